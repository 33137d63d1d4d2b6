package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatFromPath picks the format from a file extension. Unknown
// extensions are JPEG.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	default:
		return FormatJPEG
	}
}

// Encode encodes img in the given format.
//
// Arguments:
//   - img: The image to encode.
//   - format: FormatJPEG or FormatPNG.
//   - quality: JPEG quality (1..100). Ignored for PNG.
//
// Returns:
//   - []byte: The encoded image.
//   - error: An error if the format is unknown or encoding fails.
func Encode(img image.Image, format ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, errors.Wrap(err, "encode jpeg")
		}
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	default:
		return nil, errors.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}
