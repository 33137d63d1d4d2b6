// Package logger builds the zap logger used by the command line tools.
package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	// FormatJSON encodes one JSON object per line.
	FormatJSON Format = "json"
	// FormatConsole encodes human readable lines.
	FormatConsole Format = "console"
)

// New builds a production logger at the given level.
//
// Arguments:
//   - level: debug, info, warn or error.
//   - format: FormatJSON or FormatConsole. Empty means FormatJSON.
//
// Returns:
//   - *zap.Logger: The configured logger. Call Sync before exit.
//   - error: An error if the level or format is unknown.
func New(level string, format Format) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "", FormatJSON:
		cfg.Encoding = "json"
	case FormatConsole:
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	return cfg.Build()
}
