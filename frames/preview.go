package frames

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

const (
	// PreviewWidth is the default preview thumbnail width.
	PreviewWidth = 240
	// PreviewHeight is the default preview thumbnail height.
	PreviewHeight = 180
)

// Preview decodes the first frame of path and scales it to width x height.
//
// The source is opened and closed independently of any detection run.
//
// Arguments:
//   - path: Video file or image sequence directory.
//   - width: Thumbnail width in pixels.
//   - height: Thumbnail height in pixels.
//
// Returns:
//   - image.Image: The resized first frame.
//   - error: ErrSourceUnavailable (wrapped) if path cannot be opened or holds no frames.
//
// @example
// thumb, err := frames.Preview("clip.mp4", frames.PreviewWidth, frames.PreviewHeight)
func Preview(path string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid preview size: %dx%d", width, height)
	}

	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	frame, ok := src.Next()
	if !ok {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s has no decodable frames", path)
	}

	img, err := frame.Mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert first frame")
	}

	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}
