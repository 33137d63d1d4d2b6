package main

import (
	"os"

	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var previewFlags struct {
	output  string
	width   int
	height  int
	quality int
}

func previewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "preview <video>",
		Short: "Write a thumbnail of the first frame",
		Args:  cobra.ExactArgs(1),
		RunE:  previewAction,
	}

	cmd.Flags().StringVarP(&previewFlags.output, "output", "o", "preview.jpg", "Thumbnail file (.jpg or .png)")
	cmd.Flags().IntVar(&previewFlags.width, "width", frames.PreviewWidth, "Thumbnail width")
	cmd.Flags().IntVar(&previewFlags.height, "height", frames.PreviewHeight, "Thumbnail height")
	cmd.Flags().IntVar(&previewFlags.quality, "quality", 90, "JPEG quality")

	return cmd
}

func previewAction(cmd *cobra.Command, args []string) error {
	img, err := frames.Preview(args[0], previewFlags.width, previewFlags.height)
	if err != nil {
		return err
	}

	data, err := images.Encode(img, images.FormatFromPath(previewFlags.output), previewFlags.quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(previewFlags.output, data, 0o644); err != nil {
		return errors.Wrap(err, "write thumbnail")
	}
	return nil
}
