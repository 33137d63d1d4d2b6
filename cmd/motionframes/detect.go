package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/go-motion/metrics"
	"github.com/nvr-ai/go-motion/pipeline"
	"github.com/spf13/cobra"
)

var detectFlags struct {
	outputDir     string
	diffThreshold float64
	areaThreshold float64
	workers       int
	quality       int
	metricsAddr   string
	progressEvery int
}

func detectCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "detect <video>",
		Short: "Analyze a video and write every frame that contains motion",
		Args:  cobra.ExactArgs(1),
		RunE:  detectAction,
	}

	f := cmd.Flags()
	f.StringVarP(&detectFlags.outputDir, "output", "o", "", "Output directory (overrides MOTION_OUTPUT_DIR)")
	f.Float64Var(&detectFlags.diffThreshold, "diff-threshold", 0, "Pixel difference cutoff (overrides MOTION_DIFF_THRESHOLD)")
	f.Float64Var(&detectFlags.areaThreshold, "area-threshold", 0, "Region area cutoff (overrides MOTION_AREA_THRESHOLD)")
	f.IntVar(&detectFlags.workers, "workers", 0, "Parallel image writers (overrides MOTION_WRITE_WORKERS)")
	f.IntVar(&detectFlags.quality, "quality", 0, "JPEG quality (overrides MOTION_JPEG_QUALITY)")
	f.StringVar(&detectFlags.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (overrides METRICS_ADDR)")
	f.IntVar(&detectFlags.progressEvery, "progress-every", 0, "Log progress every N comparisons (overrides PROGRESS_EVERY)")

	return cmd
}

func detectAction(cmd *cobra.Command, args []string) error {
	settings, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	if flags.Changed("output") {
		settings.OutputDir = detectFlags.outputDir
	}
	if flags.Changed("diff-threshold") {
		settings.DiffThreshold = detectFlags.diffThreshold
	}
	if flags.Changed("area-threshold") {
		settings.AreaThreshold = detectFlags.areaThreshold
	}
	if flags.Changed("workers") {
		settings.WriteWorkers = detectFlags.workers
	}
	if flags.Changed("quality") {
		settings.JPEGQuality = detectFlags.quality
	}
	if flags.Changed("metrics-addr") {
		settings.MetricsAddr = detectFlags.metricsAddr
	}
	if flags.Changed("progress-every") {
		settings.ProgressEvery = detectFlags.progressEvery
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.MetricsAddr != "" {
		metrics.StartServer(ctx, settings.MetricsAddr, log)
	}

	reporter := pipeline.Reporters{
		pipeline.NewLogReporter(log, settings.ProgressEvery),
		metrics.NewReporter(),
	}

	run, err := pipeline.Start(ctx, settings.PipelineConfig(args[0]), reporter, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	summary, err := run.Wait()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary.Cancelled {
		fmt.Fprintln(out, "Analysis interrupted, partial results:")
	}
	fmt.Fprintf(out, "%d frames with motion saved to %s\n", len(summary.OutputPaths), summary.OutputDir)
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "  failed: %s\n", failure.Error())
	}
	return nil
}
