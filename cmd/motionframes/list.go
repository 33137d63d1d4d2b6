package main

import (
	"fmt"

	"github.com/nvr-ai/go-motion/capture"
	"github.com/spf13/cobra"
)

var listVideo string

func listCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "list [dir]",
		Short: "List the detection images in an output directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listAction,
	}

	cmd.Flags().StringVar(&listVideo, "video", "", "Only list images of this video base name")

	return cmd
}

func listAction(cmd *cobra.Command, args []string) error {
	dir := capture.DefaultOutputDir
	if len(args) == 1 {
		dir = args[0]
	}

	files, err := capture.ListOutputs(dir, listVideo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		fmt.Fprintf(out, "%s\t%d\t%s\n", f.Base, f.Index, f.Path)
	}
	return nil
}
