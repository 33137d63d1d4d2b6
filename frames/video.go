package frames

import (
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// VideoSource decodes a video container frame by frame with gocv.
type VideoSource struct {
	path    string
	capture *gocv.VideoCapture
	buffer  gocv.Mat
	next    int
	done    bool
}

// OpenVideo opens a video file for sequential decoding.
//
// Arguments:
//   - path: Path to the video file.
//
// Returns:
//   - *VideoSource: The opened source. Call Close when finished.
//   - error: ErrSourceUnavailable (wrapped) if the file is missing or cannot be decoded.
func OpenVideo(path string) (*VideoSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "stat %s: %v", path, err)
	}

	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "open %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "open %s: capture not opened", path)
	}

	return &VideoSource{
		path:    path,
		capture: capture,
		buffer:  gocv.NewMat(),
	}, nil
}

// Path returns the path the source was opened from.
func (v *VideoSource) Path() string { return v.path }

// FrameCount returns the container's reported frame count, or 0 when the
// container does not report one. The value is advisory only.
func (v *VideoSource) FrameCount() int {
	n := int(v.capture.Get(gocv.VideoCaptureFrameCount))
	if n < 0 {
		return 0
	}
	return n
}

// Next decodes the next frame into the source's reusable buffer.
//
// A failed or empty read ends the stream; there is no separate corruption
// signal.
func (v *VideoSource) Next() (Frame, bool) {
	if v.done {
		return Frame{}, false
	}
	if ok := v.capture.Read(&v.buffer); !ok || v.buffer.Empty() {
		v.done = true
		return Frame{}, false
	}

	frame := Frame{Index: v.next, Mat: v.buffer}
	v.next++
	return frame, true
}

// Close releases the capture device and the decode buffer.
func (v *VideoSource) Close() error {
	v.done = true
	v.buffer.Close()
	return v.capture.Close()
}
