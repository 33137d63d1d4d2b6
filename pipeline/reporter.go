package pipeline

import (
	"time"

	"github.com/nvr-ai/go-motion/capture"
	"go.uber.org/zap"
)

// DetectionSummary is the final result of a run.
type DetectionSummary struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// VideoPath is the analyzed source.
	VideoPath string `json:"video_path"`
	// OutputDir is where detection images were written.
	OutputDir string `json:"output_dir"`
	// DetectedCount is the number of frames flagged as motion.
	DetectedCount int `json:"detected_count"`
	// OutputPaths holds the written files in detection order.
	OutputPaths []string `json:"output_paths"`
	// Failures holds records that could not be written.
	Failures []capture.WriteFailure `json:"failures,omitempty"`
	// Records maps detection indices to source frame indices.
	Records []capture.RecordInfo `json:"records"`
	// FramesRead is the number of frames decoded.
	FramesRead int `json:"frames_read"`
	// FramesCompared is the number of frames compared to a baseline.
	FramesCompared int `json:"frames_compared"`
	// Cancelled is true when the run was stopped before completing.
	Cancelled bool `json:"cancelled"`
	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// RunInfo describes a run that has left Idle.
type RunInfo struct {
	RunID     string
	VideoPath string
	OutputDir string
	// TotalFrames is the source's advertised length, or 0 if unknown.
	TotalFrames int
}

// Reporter receives progress signals from a run. Methods are called from
// the run's worker goroutine, in order.
type Reporter interface {
	// OnProgress is called after each frame comparison.
	OnProgress(framesCompared int)
	// OnComplete is called once when the run finishes, including cancelled runs.
	OnComplete(summary DetectionSummary)
	// OnFailed is called once when the run cannot start or fails mid-stream.
	OnFailed(err error)
}

// StartReporter is implemented by reporters that want to know when
// streaming begins.
type StartReporter interface {
	OnStart(info RunInfo)
}

// NopReporter discards all signals.
type NopReporter struct{}

// OnProgress implements Reporter.
func (NopReporter) OnProgress(int) {}

// OnComplete implements Reporter.
func (NopReporter) OnComplete(DetectionSummary) {}

// OnFailed implements Reporter.
func (NopReporter) OnFailed(error) {}

// ReporterFuncs adapts plain functions to a Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	Start    func(RunInfo)
	Progress func(int)
	Complete func(DetectionSummary)
	Failed   func(error)
}

// OnStart implements StartReporter.
func (f ReporterFuncs) OnStart(info RunInfo) {
	if f.Start != nil {
		f.Start(info)
	}
}

// OnProgress implements Reporter.
func (f ReporterFuncs) OnProgress(n int) {
	if f.Progress != nil {
		f.Progress(n)
	}
}

// OnComplete implements Reporter.
func (f ReporterFuncs) OnComplete(s DetectionSummary) {
	if f.Complete != nil {
		f.Complete(s)
	}
}

// OnFailed implements Reporter.
func (f ReporterFuncs) OnFailed(err error) {
	if f.Failed != nil {
		f.Failed(err)
	}
}

// Reporters fans every signal out to each reporter in order.
type Reporters []Reporter

// OnStart implements StartReporter.
func (rs Reporters) OnStart(info RunInfo) {
	for _, r := range rs {
		if s, ok := r.(StartReporter); ok {
			s.OnStart(info)
		}
	}
}

// OnProgress implements Reporter.
func (rs Reporters) OnProgress(n int) {
	for _, r := range rs {
		r.OnProgress(n)
	}
}

// OnComplete implements Reporter.
func (rs Reporters) OnComplete(s DetectionSummary) {
	for _, r := range rs {
		r.OnComplete(s)
	}
}

// OnFailed implements Reporter.
func (rs Reporters) OnFailed(err error) {
	for _, r := range rs {
		r.OnFailed(err)
	}
}

// LogReporter logs progress and results.
type LogReporter struct {
	logger *zap.Logger
	every  int
	total  int
}

// NewLogReporter logs a progress line every `every` comparisons. Values
// below 1 log every comparison.
func NewLogReporter(logger *zap.Logger, every int) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if every < 1 {
		every = 1
	}
	return &LogReporter{logger: logger, every: every}
}

// OnStart implements StartReporter.
func (l *LogReporter) OnStart(info RunInfo) {
	l.total = info.TotalFrames
	l.logger.Info("analysis started",
		zap.String("run_id", info.RunID),
		zap.String("video", info.VideoPath),
		zap.String("output_dir", info.OutputDir),
		zap.Int("total_frames", info.TotalFrames),
	)
}

// OnProgress implements Reporter.
func (l *LogReporter) OnProgress(n int) {
	if n%l.every != 0 {
		return
	}
	fields := []zap.Field{zap.Int("frames_compared", n)}
	if l.total > 1 {
		fields = append(fields, zap.Int("comparisons_expected", l.total-1))
	}
	l.logger.Info("frames analyzed", fields...)
}

// OnComplete implements Reporter.
func (l *LogReporter) OnComplete(s DetectionSummary) {
	fields := []zap.Field{
		zap.String("run_id", s.RunID),
		zap.Int("detected", s.DetectedCount),
		zap.Int("written", len(s.OutputPaths)),
		zap.Int("failed_writes", len(s.Failures)),
		zap.Int("frames_compared", s.FramesCompared),
		zap.Duration("duration", s.Duration),
	}
	if s.Cancelled {
		l.logger.Warn("analysis cancelled", fields...)
		return
	}
	l.logger.Info("analysis finished", fields...)
}

// OnFailed implements Reporter.
func (l *LogReporter) OnFailed(err error) {
	l.logger.Error("analysis failed", zap.Error(err))
}
