package metrics

import (
	"github.com/nvr-ai/go-motion/pipeline"
)

// Reporter feeds the package collectors from one run's signals.
//
// A Reporter tracks per-run state and must not be shared between runs.
type Reporter struct {
	started  bool
	compared int
}

// NewReporter creates a Reporter for a single run.
func NewReporter() *Reporter {
	return &Reporter{}
}

// OnStart implements pipeline.StartReporter.
func (r *Reporter) OnStart(pipeline.RunInfo) {
	r.started = true
	ActiveRuns.Inc()
}

// OnProgress implements pipeline.Reporter.
func (r *Reporter) OnProgress(framesCompared int) {
	if delta := framesCompared - r.compared; delta > 0 {
		FramesComparedTotal.Add(float64(delta))
	}
	r.compared = framesCompared
}

// OnComplete implements pipeline.Reporter.
func (r *Reporter) OnComplete(s pipeline.DetectionSummary) {
	outcome := OutcomeDone
	if s.Cancelled {
		outcome = OutcomeCancelled
	}

	FramesReadTotal.Add(float64(s.FramesRead))
	DetectionsTotal.Add(float64(s.DetectedCount))
	WritesTotal.WithLabelValues(WriteWritten).Add(float64(len(s.OutputPaths)))
	WritesTotal.WithLabelValues(WriteFailed).Add(float64(len(s.Failures)))
	RunDuration.WithLabelValues(outcome).Observe(s.Duration.Seconds())
	r.finish(outcome)
}

// OnFailed implements pipeline.Reporter.
func (r *Reporter) OnFailed(error) {
	r.finish(OutcomeFailed)
}

func (r *Reporter) finish(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
	if r.started {
		ActiveRuns.Dec()
		r.started = false
	}
}
