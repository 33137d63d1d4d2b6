// Package config loads runtime settings from the environment.
package config

import (
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/pipeline"
	"github.com/pkg/errors"
)

// Settings holds every environment-backed option.
type Settings struct {
	OutputDir     string  `env:"MOTION_OUTPUT_DIR"     envDefault:"yakalanan_hareketler"`
	DiffThreshold float64 `env:"MOTION_DIFF_THRESHOLD" envDefault:"30"`
	AreaThreshold float64 `env:"MOTION_AREA_THRESHOLD" envDefault:"500"`
	WriteWorkers  int     `env:"MOTION_WRITE_WORKERS"  envDefault:"1"`
	JPEGQuality   int     `env:"MOTION_JPEG_QUALITY"   envDefault:"95"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	MetricsAddr   string `env:"METRICS_ADDR"`
	ProgressEvery int    `env:"PROGRESS_EVERY" envDefault:"25"`
}

// Load parses Settings from the process environment. Each dotenv file that
// exists is merged into the environment first; variables that are already
// set keep their value.
func Load(dotenv ...string) (*Settings, error) {
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", file)
		}
	}

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	return s, nil
}

// LoadFrom parses Settings from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Settings, error) {
	s := &Settings{}
	if err := env.ParseWithOptions(s, env.Options{Environment: vars}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	return s, nil
}

// PipelineConfig returns the run configuration for videoPath. It is not
// validated; pipeline.Start does that.
func (s *Settings) PipelineConfig(videoPath string) pipeline.Config {
	return pipeline.Config{
		VideoPath:     videoPath,
		OutputDir:     s.OutputDir,
		DiffThreshold: s.DiffThreshold,
		AreaThreshold: s.AreaThreshold,
		WriteWorkers:  s.WriteWorkers,
		JPEGQuality:   s.JPEGQuality,
	}
}

// LogFormatValue returns LogFormat as a logger.Format.
func (s *Settings) LogFormatValue() logger.Format {
	return logger.Format(s.LogFormat)
}
