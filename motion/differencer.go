// Package motion - Consecutive-frame motion detection using gocv.
//
// The pipeline for each frame is:
//
// ┌──────────────┐
// │ Input Frame  │
// └──────┬───────┘
// ┌──────────────────────────────┐
// │ Grayscale reduction          │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ AbsDiff against the baseline │──► baseline := current gray
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Threshold (binary mask)      │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ External contour extraction  │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Any region area > cutoff ?   │
// └──────────────────────────────┘
//
// The baseline is always the previously observed frame, never a fixed
// background model. It is replaced on every comparison whether or not motion
// was found.
//
// Types in this package hold native OpenCV memory; call Close when done.
package motion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrDimensionMismatch is returned when a frame's resolution differs from
// the baseline's. Streams are expected to have a constant resolution.
var ErrDimensionMismatch = errors.New("frame dimensions differ from baseline")

// Grayscale reduces src to a single luminance channel in dst.
//
// BGR, BGRA and already single-channel Mats are accepted. dst always has the
// same width and height as src.
func Grayscale(src gocv.Mat, dst *gocv.Mat) error {
	switch src.Channels() {
	case 1:
		return src.CopyTo(dst)
	case 3:
		return gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	case 4:
		return gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		return errors.Errorf("unsupported channel count: %d", src.Channels())
	}
}

// Differencer keeps the previous grayscale frame and diffs each new frame
// against it.
type Differencer struct {
	previous    gocv.Mat
	current     gocv.Mat
	diff        gocv.Mat
	hasBaseline bool
}

// NewDifferencer creates a Differencer with an empty baseline.
func NewDifferencer() *Differencer {
	return &Differencer{
		previous: gocv.NewMat(),
		current:  gocv.NewMat(),
		diff:     gocv.NewMat(),
	}
}

// Observe reduces frame to grayscale and compares it to the baseline.
//
// The first observed frame only becomes the baseline and ok is false. Every
// later call returns the absolute difference map and replaces the baseline
// with the new grayscale frame.
//
// Arguments:
//   - frame: The BGR (or grayscale) frame to observe.
//
// Returns:
//   - gocv.Mat: The difference map. It is owned by the Differencer and only
//     valid until the next call to Observe.
//   - bool: Whether a difference was computed.
//   - error: ErrDimensionMismatch, or a gocv conversion error.
func (d *Differencer) Observe(frame gocv.Mat) (gocv.Mat, bool, error) {
	if err := Grayscale(frame, &d.current); err != nil {
		return d.diff, false, errors.Wrap(err, "grayscale")
	}

	if !d.hasBaseline {
		d.previous, d.current = d.current, d.previous
		d.hasBaseline = true
		return d.diff, false, nil
	}

	if d.current.Rows() != d.previous.Rows() || d.current.Cols() != d.previous.Cols() {
		return d.diff, false, errors.Wrapf(ErrDimensionMismatch, "baseline %dx%d, frame %dx%d",
			d.previous.Cols(), d.previous.Rows(), d.current.Cols(), d.current.Rows())
	}

	if err := gocv.AbsDiff(d.previous, d.current, &d.diff); err != nil {
		return d.diff, false, errors.Wrap(err, "absdiff")
	}

	// The old baseline buffer becomes scratch space for the next frame.
	d.previous, d.current = d.current, d.previous

	return d.diff, true, nil
}

// HasBaseline reports whether a baseline frame has been stored.
func (d *Differencer) HasBaseline() bool { return d.hasBaseline }

// Baseline returns the current baseline. It is owned by the Differencer.
func (d *Differencer) Baseline() gocv.Mat { return d.previous }

// Reset drops the baseline. The next observed frame becomes the new baseline.
func (d *Differencer) Reset() { d.hasBaseline = false }

// Close releases all native buffers.
func (d *Differencer) Close() {
	d.previous.Close()
	d.current.Close()
	d.diff.Close()
}

// Threshold converts diff into a binary mask: 255 where diff > cutoff, 0
// elsewhere.
func Threshold(diff gocv.Mat, mask *gocv.Mat, cutoff float64) {
	gocv.Threshold(diff, mask, float32(cutoff), 255, gocv.ThresholdBinary)
}
