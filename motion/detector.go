package motion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// DefaultDiffThreshold is the default binary mask cutoff.
	DefaultDiffThreshold = 30.0
	// DefaultAreaThreshold is the default region significance cutoff.
	DefaultAreaThreshold = 500.0
)

// Config contains the detection cutoffs.
type Config struct {
	// DiffThreshold is the per-pixel difference a pixel must exceed to be
	// marked as changed.
	DiffThreshold float64
	// AreaThreshold is the contour area a region must exceed for the frame
	// to count as motion.
	AreaThreshold float64
}

// DefaultConfig returns the default cutoffs (30, 500).
func DefaultConfig() Config {
	return Config{
		DiffThreshold: DefaultDiffThreshold,
		AreaThreshold: DefaultAreaThreshold,
	}
}

// Validate checks that both cutoffs are positive.
func (c Config) Validate() error {
	if c.DiffThreshold <= 0 {
		return errors.Errorf("diff threshold must be positive, got %v", c.DiffThreshold)
	}
	if c.AreaThreshold <= 0 {
		return errors.Errorf("area threshold must be positive, got %v", c.AreaThreshold)
	}
	return nil
}

// Result is the outcome of observing one frame.
type Result struct {
	// Compared is false for the first frame, which only seeds the baseline.
	Compared bool
	// Detected is true when a significant region was found.
	Detected bool
	// Trigger is the first significant region. Zero unless Detected.
	Trigger Region
}

// Detector runs the full per-frame pipeline: grayscale, difference,
// threshold, region extraction and the significance decision.
//
// A Detector is stateful and must be used by one goroutine at a time.
type Detector struct {
	config      Config
	differencer *Differencer
	mask        gocv.Mat
}

// NewDetector creates a Detector with the given cutoffs.
//
// Arguments:
//   - config: The detection cutoffs.
//
// Returns:
//   - *Detector: The initialized detector. Call Close when finished.
//
// @example
// detector := motion.NewDetector(motion.DefaultConfig())
// defer detector.Close()
func NewDetector(config Config) *Detector {
	return &Detector{
		config:      config,
		differencer: NewDifferencer(),
		mask:        gocv.NewMat(),
	}
}

// Observe runs one frame through the pipeline.
func (d *Detector) Observe(frame gocv.Mat) (Result, error) {
	diff, ok, err := d.differencer.Observe(frame)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, nil
	}

	Threshold(diff, &d.mask, d.config.DiffThreshold)

	regions := ExtractRegions(d.mask)
	defer regions.Close()

	trigger, detected := FirstSignificant(regions.All(), d.config.AreaThreshold)
	return Result{Compared: true, Detected: detected, Trigger: trigger}, nil
}

// Mask returns the binary mask of the last comparison. It is owned by the
// Detector.
func (d *Detector) Mask() gocv.Mat { return d.mask }

// Config returns the detector's cutoffs.
func (d *Detector) Config() Config { return d.config }

// Close releases all native buffers.
func (d *Detector) Close() {
	d.differencer.Close()
	d.mask.Close()
}
