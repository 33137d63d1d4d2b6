package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-motion/capture"
	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/profiler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the lifecycle state of a run.
type State int32

const (
	// StateIdle is the state before the source is opened.
	StateIdle State = iota
	// StateStreaming is the frame comparison loop.
	StateStreaming
	// StateFinalizing is the persistence of recorded frames.
	StateFinalizing
	// StateDone is terminal: the summary has been reported.
	StateDone
	// StateFailed is terminal: the run could not start or aborted.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Done or Failed.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

type options struct {
	opener frames.Opener
	logger *zap.Logger
}

// Option customizes Start.
type Option func(*options)

// WithOpener replaces frames.Open as the source opener.
func WithOpener(opener frames.Opener) Option {
	return func(o *options) {
		if opener != nil {
			o.opener = opener
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// RunHandle observes and controls a run started with Start.
type RunHandle struct {
	id     string
	state  atomic.Int32
	done   chan struct{}
	cancel context.CancelFunc

	// Written by the worker before done is closed.
	summary DetectionSummary
	stages  []profiler.StageStats
	err     error
}

func newRunHandle(cancel context.CancelFunc) *RunHandle {
	return &RunHandle{
		id:     uuid.NewString(),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// ID returns the run's unique identifier.
func (h *RunHandle) ID() string { return h.id }

// State returns the current lifecycle state.
func (h *RunHandle) State() State { return State(h.state.Load()) }

// Done is closed once the run reaches Done or Failed.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Poll returns the summary without blocking. ok is false while the run is
// in progress.
func (h *RunHandle) Poll() (summary DetectionSummary, ok bool) {
	select {
	case <-h.done:
		return h.summary, true
	default:
		return DetectionSummary{}, false
	}
}

// Wait blocks until the run finishes and returns its summary. The error is
// non-nil only if the run Failed; a cancelled run returns a partial summary
// and a nil error.
func (h *RunHandle) Wait() (DetectionSummary, error) {
	<-h.done
	return h.summary, h.err
}

// Stop requests cancellation. It returns immediately; use Wait to observe
// the partial summary.
func (h *RunHandle) Stop() { h.cancel() }

// Stages returns the per-stage timings of a finished run, or nil while the
// run is in progress.
func (h *RunHandle) Stages() []profiler.StageStats {
	select {
	case <-h.done:
		return h.stages
	default:
		return nil
	}
}

func (h *RunHandle) setState(s State) { h.state.Store(int32(s)) }

// Start validates cfg, prepares the output directory, opens the source and
// runs the detection loop on a new goroutine.
//
// Configuration and source errors are returned synchronously. A
// configuration error returns a nil handle; a source error returns a handle
// already in StateFailed after reporter.OnFailed has been called.
//
// Arguments:
//   - ctx: Cancels the run. Cancellation is checked once per frame and once per write.
//   - cfg: The run configuration.
//   - reporter: Receives progress signals. Nil means NopReporter.
//   - opts: Optional opener and logger.
//
// Returns:
//   - *RunHandle: The running (or failed) run.
//   - error: ErrConfiguration or frames.ErrSourceUnavailable (wrapped).
//
// @example
// run, err := pipeline.Start(ctx, pipeline.DefaultConfig("clip.mp4"), nil)
//
//	if err != nil {
//	    return err
//	}
//
// summary, err := run.Wait()
func Start(ctx context.Context, cfg Config, reporter Reporter, opts ...Option) (*RunHandle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{opener: frames.Open, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := newRunHandle(cancel)
	logger := o.logger.With(zap.String("run_id", h.id), zap.String("video", cfg.VideoPath))

	fail := func(err error) (*RunHandle, error) {
		cancel()
		h.err = err
		h.summary = DetectionSummary{RunID: h.id, VideoPath: cfg.VideoPath, OutputDir: cfg.OutputDir}
		h.setState(StateFailed)
		logger.Error("run failed", zap.Error(err))
		reporter.OnFailed(err)
		close(h.done)
		return h, err
	}

	// The output directory is created before the source is validated.
	if err := capture.EnsureDir(cfg.OutputDir); err != nil {
		return fail(err)
	}

	src, err := o.opener(cfg.VideoPath)
	if err != nil {
		if !errors.Is(err, frames.ErrSourceUnavailable) {
			err = errors.Wrapf(frames.ErrSourceUnavailable, "open %s: %v", cfg.VideoPath, err)
		}
		return fail(err)
	}

	w := &worker{
		cfg:      cfg,
		handle:   h,
		source:   src,
		reporter: reporter,
		logger:   logger,
		profiler: profiler.New(),
	}
	h.setState(StateStreaming)
	go w.run(runCtx)

	return h, nil
}

// worker owns the source, the detector state and the recorded frames.
type worker struct {
	cfg      Config
	handle   *RunHandle
	source   frames.Source
	reporter Reporter
	logger   *zap.Logger
	profiler *profiler.StageProfiler
}

func (w *worker) run(ctx context.Context) {
	h := w.handle
	defer close(h.done)
	defer h.cancel()

	started := time.Now()
	detector := motion.NewDetector(w.cfg.Motion())
	defer detector.Close()
	acc := capture.NewAccumulator()
	defer acc.Close()

	info := RunInfo{RunID: h.id, VideoPath: w.cfg.VideoPath, OutputDir: w.cfg.OutputDir}
	if c, ok := w.source.(frames.Counter); ok {
		info.TotalFrames = c.FrameCount()
	}
	if s, ok := w.reporter.(StartReporter); ok {
		s.OnStart(info)
	}

	summary := DetectionSummary{RunID: h.id, VideoPath: w.cfg.VideoPath, OutputDir: w.cfg.OutputDir}

	streamErr := w.stream(ctx, detector, acc, &summary)
	if err := w.source.Close(); err != nil {
		w.logger.Warn("failed to close source", zap.Error(err))
	}
	if streamErr != nil {
		summary.Duration = time.Since(started)
		w.finish(summary, streamErr)
		return
	}

	h.setState(StateFinalizing)
	persistCtx := ctx
	if summary.Cancelled {
		// Frames recorded before the stop are still written.
		persistCtx = context.WithoutCancel(ctx)
	}
	stop := w.profiler.StartOperation(profiler.StagePersist)
	sink := capture.NewSink(capture.SinkConfig{
		Dir:     w.cfg.OutputDir,
		Base:    w.cfg.Base(),
		Workers: w.cfg.WriteWorkers,
		Quality: w.cfg.JPEGQuality,
	}, w.logger)
	persisted := sink.Persist(persistCtx, acc.Records())
	stop()

	summary.DetectedCount = acc.Len()
	summary.Records = acc.Infos()
	summary.OutputPaths = persisted.Written
	summary.Failures = persisted.Failures
	if persisted.Skipped > 0 {
		summary.Cancelled = true
	}
	summary.Duration = time.Since(started)

	w.finish(summary, nil)
}

// stream runs the comparison loop until end of stream, cancellation or a
// fatal frame error.
func (w *worker) stream(ctx context.Context, detector *motion.Detector, acc *capture.Accumulator, summary *DetectionSummary) error {
	for {
		if ctx.Err() != nil {
			summary.Cancelled = true
			return nil
		}

		stop := w.profiler.StartOperation(profiler.StageDecode)
		frame, ok := w.source.Next()
		stop()
		if !ok {
			return nil
		}
		summary.FramesRead++

		stop = w.profiler.StartOperation(profiler.StageDetect)
		result, err := detector.Observe(frame.Mat)
		stop()
		if err != nil {
			return errors.Wrapf(err, "frame %d", frame.Index)
		}
		if !result.Compared {
			continue
		}
		summary.FramesCompared++

		if result.Detected {
			stop = w.profiler.StartOperation(profiler.StageRecord)
			record := acc.Add(frame)
			stop()
			w.logger.Debug("motion detected",
				zap.Int("frame", frame.Index),
				zap.Int("detection", record.Index),
				zap.Float64("area", result.Trigger.Area),
			)
		}

		w.reporter.OnProgress(summary.FramesCompared)
	}
}

// finish publishes the outcome. The summary is stored before the reporter
// is notified so Poll and Wait observe the same value the reporter saw.
func (w *worker) finish(summary DetectionSummary, err error) {
	h := w.handle
	w.profiler.Report(w.logger)
	h.stages = w.profiler.Snapshot()
	h.summary = summary
	h.err = err

	if err != nil {
		h.setState(StateFailed)
		w.logger.Error("run failed", zap.Error(err), zap.Int("frames_read", summary.FramesRead))
		w.reporter.OnFailed(err)
		return
	}

	if summary.Cancelled {
		w.logger.Warn("run cancelled",
			zap.Int("frames_compared", summary.FramesCompared),
			zap.Int("written", len(summary.OutputPaths)),
		)
	}
	h.setState(StateDone)
	w.reporter.OnComplete(summary)
}
