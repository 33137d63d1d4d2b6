// Package profiler - Per-stage timing for a detection run.
package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage names used by the pipeline.
const (
	StageDecode  = "decode"
	StageDetect  = "detect"
	StageRecord  = "record"
	StagePersist = "persist"
)

// StageStats summarizes the timings of one stage.
type StageStats struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average returns the mean duration, or 0 for an unused stage.
func (s StageStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// StageProfiler accumulates operation timings per stage.
//
// It is safe for concurrent use, so parallel writers can share one profiler.
type StageProfiler struct {
	mu        sync.Mutex
	startTime time.Time
	stages    map[string]*StageStats
}

// New creates a StageProfiler whose clock starts now.
func New() *StageProfiler {
	return &StageProfiler{
		startTime: time.Now(),
		stages:    make(map[string]*StageStats),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the stage to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// stop := p.StartOperation(profiler.StageDecode)
// frame, ok := src.Next()
// stop()
func (p *StageProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one completed operation of the given duration.
func (p *StageProfiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stage, exists := p.stages[name]
	if !exists {
		stage = &StageStats{Name: name, Min: duration, Max: duration}
		p.stages[name] = stage
	}

	stage.Count++
	stage.Total += duration
	if duration < stage.Min {
		stage.Min = duration
	}
	if duration > stage.Max {
		stage.Max = duration
	}
}

// Snapshot returns the stats of every stage, sorted by name.
func (p *StageProfiler) Snapshot() []StageStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]StageStats, 0, len(p.stages))
	for _, s := range p.stages {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Elapsed returns the time since the profiler was created.
func (p *StageProfiler) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// Report logs one line per stage plus a memory summary at debug level.
func (p *StageProfiler) Report(logger *zap.Logger) {
	if logger == nil {
		return
	}

	for _, s := range p.Snapshot() {
		logger.Info("stage timing",
			zap.String("stage", s.Name),
			zap.Int64("count", s.Count),
			zap.Duration("avg", s.Average().Truncate(time.Microsecond)),
			zap.Duration("min", s.Min.Truncate(time.Microsecond)),
			zap.Duration("max", s.Max.Truncate(time.Microsecond)),
			zap.Duration("total", s.Total.Truncate(time.Microsecond)),
		)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	logger.Debug("memory usage",
		zap.Duration("elapsed", p.Elapsed().Truncate(time.Millisecond)),
		zap.Uint64("heap_alloc", mem.HeapAlloc),
		zap.Uint64("sys", mem.Sys),
		zap.Uint32("gc_cycles", mem.NumGC),
		zap.Int64("cgo_calls", runtime.NumCgoCall()),
	)
}
