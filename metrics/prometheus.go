// Package metrics exposes prometheus collectors for detection runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeDone      = "done"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Write result label values.
const (
	WriteWritten = "written"
	WriteFailed  = "failed"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motionframes_runs_total",
		Help: "Total number of detection runs, by outcome",
	}, []string{"outcome"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "motionframes_run_duration_seconds",
		Help:    "Wall time of a detection run",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"outcome"})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "motionframes_active_runs",
		Help: "Number of runs currently streaming or writing",
	})

	FramesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motionframes_frames_read_total",
		Help: "Total number of frames decoded across all runs",
	})

	FramesComparedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motionframes_frames_compared_total",
		Help: "Total number of frames compared to a baseline",
	})

	DetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motionframes_detections_total",
		Help: "Total number of frames flagged as motion",
	})

	WritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motionframes_writes_total",
		Help: "Total number of detection image writes, by result",
	}, []string{"result"})
)
