// Package pipeline - Orchestration of a motion detection run.
//
// A run moves through Idle → Streaming → Finalizing → Done, with Failed
// reachable from any state:
//
//   - Idle → Streaming once the source opens.
//   - Streaming pulls frames one at a time, runs the motion Detector and
//     records flagged frames until the source is exhausted or the run is
//     cancelled.
//   - Finalizing writes the recorded frames to the output directory.
//   - Done is reached after the final summary is reported.
//
// The worker goroutine exclusively owns the baseline frame and the recorded
// frames. Callers only observe a run through its Reporter and RunHandle.
package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-motion/capture"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/pkg/errors"
)

// ErrConfiguration is returned when a run is started with invalid settings.
var ErrConfiguration = errors.New("invalid configuration")

// Config contains the parameters of a single run.
type Config struct {
	// VideoPath is the video file (or image sequence directory) to analyze.
	VideoPath string
	// OutputDir receives the detection images. Created if missing.
	OutputDir string
	// DiffThreshold is the binary mask cutoff.
	DiffThreshold float64
	// AreaThreshold is the region significance cutoff.
	AreaThreshold float64
	// WriteWorkers is the number of concurrent image writers.
	WriteWorkers int
	// JPEGQuality is the output JPEG quality (1..100).
	JPEGQuality int
}

// DefaultConfig returns the default configuration for videoPath.
func DefaultConfig(videoPath string) Config {
	return Config{
		VideoPath:     videoPath,
		OutputDir:     capture.DefaultOutputDir,
		DiffThreshold: motion.DefaultDiffThreshold,
		AreaThreshold: motion.DefaultAreaThreshold,
		WriteWorkers:  1,
		JPEGQuality:   capture.DefaultJPEGQuality,
	}
}

// Validate returns an error wrapping ErrConfiguration for any invalid field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.VideoPath) == "" {
		return errors.Wrap(ErrConfiguration, "video path is empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.Wrap(ErrConfiguration, "output directory is empty")
	}
	if err := c.Motion().Validate(); err != nil {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	if c.WriteWorkers < 1 {
		return errors.Wrapf(ErrConfiguration, "write workers must be at least 1, got %d", c.WriteWorkers)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.Wrapf(ErrConfiguration, "jpeg quality must be within 1..100, got %d", c.JPEGQuality)
	}
	return nil
}

// Motion returns the detector cutoffs.
func (c Config) Motion() motion.Config {
	return motion.Config{
		DiffThreshold: c.DiffThreshold,
		AreaThreshold: c.AreaThreshold,
	}
}

// Base returns the video's base name, used as output file prefix.
func (c Config) Base() string {
	return filepath.Base(filepath.Clean(c.VideoPath))
}
