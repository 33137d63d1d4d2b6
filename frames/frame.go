// Package frames - Sequential frame sources for the motion pipeline.
//
// A Source yields decoded frames in stream order. Decoders are free to reuse
// the underlying Mat between calls to Next, so any stage that needs to keep a
// frame past the current iteration must Clone it.
//
// Three sources are provided:
//
//   - VideoSource: a video container decoded through gocv.VideoCapture.
//   - ImageSequenceSource: a directory of frame-<N>.jpg style images.
//   - SliceSource: an in-memory sequence, mostly useful for tests.
//
// All of them share the same tolerant end-of-stream semantics: a decode
// failure in the middle of the stream is reported exactly like a clean end.
package frames

import (
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrSourceUnavailable is returned when a source cannot be opened at all.
var ErrSourceUnavailable = errors.New("source unavailable")

// Frame is a single decoded frame and its position in the source.
type Frame struct {
	// Index is the 0-based position of the frame in the source.
	Index int
	// Mat holds the pixel data. It is owned by the source and only valid
	// until the next call to Source.Next.
	Mat gocv.Mat
}

// Width returns the frame width in pixels.
func (f Frame) Width() int { return f.Mat.Cols() }

// Height returns the frame height in pixels.
func (f Frame) Height() int { return f.Mat.Rows() }

// Channels returns the number of color channels.
func (f Frame) Channels() int { return f.Mat.Channels() }

// Source is a sequential decoder yielding frames in order.
type Source interface {
	// Next returns the next frame. ok is false once the stream is exhausted
	// or a frame could not be decoded.
	Next() (frame Frame, ok bool)
	// Close releases the decoder.
	Close() error
}

// Counter is implemented by sources that know their length up front.
type Counter interface {
	// FrameCount returns the expected number of frames, or 0 if unknown.
	FrameCount() int
}

// Opener opens a Source from a filesystem path.
type Opener func(path string) (Source, error)

// Open opens path as a video file, or as an image sequence when path is a
// directory.
//
// Arguments:
//   - path: Video file or image sequence directory.
//
// Returns:
//   - Source: The opened source.
//   - error: ErrSourceUnavailable (wrapped) if nothing can be read from path.
//
// @example
// src, err := frames.Open("clip.mp4")
//
//	if err != nil {
//	    return err
//	}
//
// defer src.Close()
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "stat %s: %v", path, err)
	}
	if info.IsDir() {
		return OpenImageSequence(path)
	}
	return OpenVideo(path)
}
