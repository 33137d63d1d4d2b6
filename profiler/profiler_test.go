package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordStats(t *testing.T) {
	p := New()
	p.Record(StageDecode, 2*time.Millisecond)
	p.Record(StageDecode, 4*time.Millisecond)
	p.Record(StageDetect, time.Millisecond)

	stats := p.Snapshot()
	require.Len(t, stats, 2)

	assert.Equal(t, StageDecode, stats[0].Name)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, 2*time.Millisecond, stats[0].Min)
	assert.Equal(t, 4*time.Millisecond, stats[0].Max)
	assert.Equal(t, 3*time.Millisecond, stats[0].Average())

	assert.Equal(t, StageDetect, stats[1].Name)
	assert.Zero(t, StageStats{}.Average())
}

func TestStartOperationConcurrent(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := p.StartOperation(StagePersist)
			stop()
		}()
	}
	wg.Wait()

	stats := p.Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(8), stats[0].Count)
}

func TestReport(t *testing.T) {
	p := New()
	p.Record(StageDecode, time.Millisecond)
	p.Record(StagePersist, time.Millisecond)

	core, logs := observer.New(zap.DebugLevel)
	p.Report(zap.New(core))

	assert.Equal(t, 2, logs.FilterMessage("stage timing").Len())
	assert.Equal(t, 1, logs.FilterMessage("memory usage").Len())

	p.Report(nil)
}
