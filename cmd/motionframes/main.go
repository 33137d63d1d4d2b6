// Command motionframes extracts the frames of a video that contain motion.
package main

import (
	"fmt"
	"os"

	"github.com/nvr-ai/go-motion/config"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	err := Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "motionframes",
	Short:         "Save the frames of a video that contain motion",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	envFile   string
	logLevel  string
	logFormat string
)

func Execute() error {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "json or console (overrides LOG_FORMAT)")

	rootCmd.AddCommand(detectCommand())
	rootCmd.AddCommand(previewCommand())
	rootCmd.AddCommand(listCommand())

	return rootCmd.Execute()
}

// setup loads the environment settings and applies the global flags.
func setup() (*config.Settings, *zap.Logger, error) {
	settings, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	if logFormat != "" {
		settings.LogFormat = logFormat
	}

	log, err := logger.New(settings.LogLevel, settings.LogFormatValue())
	if err != nil {
		return nil, nil, err
	}
	return settings, log, nil
}
