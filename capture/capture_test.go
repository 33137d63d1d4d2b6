package capture

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/frames/framestest"
	"github.com/nvr-ai/go-motion/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gocv.io/x/gocv"
)

func accumulate(t *testing.T, n int) *Accumulator {
	t.Helper()
	gen := framestest.NewGenerator(64, 48)
	acc := NewAccumulator()
	for i := 0; i < n; i++ {
		m := gen.Square(i, i, 10)
		acc.Add(frames.Frame{Index: 10 + i*2, Mat: m})
		m.Close()
	}
	return acc
}

func TestAccumulatorCopiesFrames(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)
	buffer := gen.Static()
	defer buffer.Close()

	acc := NewAccumulator()
	defer acc.Close()

	before := images.ComputeMatChecksum(buffer)
	record := acc.Add(frames.Frame{Index: 7, Mat: buffer})

	// Simulate the decoder reusing its buffer for the next read.
	framestest.Fill(&buffer, image.Rect(0, 0, 20, 20), 255)

	assert.Equal(t, before, images.ComputeMatChecksum(record.Mat))
	assert.Equal(t, before, images.ComputeMatChecksum(acc.Records()[0].Mat))
	assert.NotEqual(t, before, images.ComputeMatChecksum(buffer))
}

func TestAccumulatorIndices(t *testing.T) {
	acc := accumulate(t, 4)
	defer acc.Close()

	require.Equal(t, 4, acc.Len())
	for i, info := range acc.Infos() {
		assert.Equal(t, i, info.Index)
		assert.Equal(t, 10+i*2, info.SourceIndex)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "clip.mp4_frame_0.jpg", FileName("clip.mp4", 0))
	assert.Equal(t, "clip.mp4_frame_12.jpg", FileName("clip.mp4", 12))
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSinkPersist(t *testing.T) {
	acc := accumulate(t, 3)
	defer acc.Close()

	dir := filepath.Join(t.TempDir(), DefaultOutputDir)
	sink := NewSink(SinkConfig{Dir: dir, Base: "clip.mp4"}, nil)
	result := sink.Persist(context.Background(), acc.Records())

	require.Empty(t, result.Failures)
	assert.Zero(t, result.Skipped)
	require.Equal(t, []string{
		filepath.Join(dir, "clip.mp4_frame_0.jpg"),
		filepath.Join(dir, "clip.mp4_frame_1.jpg"),
		filepath.Join(dir, "clip.mp4_frame_2.jpg"),
	}, result.Written)

	for _, path := range result.Written {
		m := gocv.IMRead(path, gocv.IMReadColor)
		assert.False(t, m.Empty())
		assert.Equal(t, 64, m.Cols())
		assert.Equal(t, 48, m.Rows())
		m.Close()
	}
}

func TestSinkContinuesPastFailedWrite(t *testing.T) {
	acc := accumulate(t, 3)
	defer acc.Close()

	dir := t.TempDir()
	// A directory occupying the target path makes the write fail for any user.
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileName("clip.mp4", 1)), 0o755))

	core, logs := observer.New(zap.ErrorLevel)
	sink := NewSink(SinkConfig{Dir: dir, Base: "clip.mp4"}, zap.New(core))
	result := sink.Persist(context.Background(), acc.Records())

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Error(t, result.Failures[0].Err)
	assert.Contains(t, result.Failures[0].Error(), "detection 1")
	assert.Equal(t, []string{
		filepath.Join(dir, "clip.mp4_frame_0.jpg"),
		filepath.Join(dir, "clip.mp4_frame_2.jpg"),
	}, result.Written)
	assert.Equal(t, 1, logs.FilterMessage("failed to write detection").Len())
}

func TestSinkParallelMatchesSequential(t *testing.T) {
	acc := accumulate(t, 8)
	defer acc.Close()

	seqDir := t.TempDir()
	parDir := t.TempDir()

	seq := NewSink(SinkConfig{Dir: seqDir, Base: "v", Workers: 1}, nil).Persist(context.Background(), acc.Records())
	par := NewSink(SinkConfig{Dir: parDir, Base: "v", Workers: 4}, nil).Persist(context.Background(), acc.Records())

	require.Len(t, par.Written, len(seq.Written))
	for i := range seq.Written {
		assert.Equal(t, filepath.Base(seq.Written[i]), filepath.Base(par.Written[i]))
	}

	seqFiles, err := ListOutputs(seqDir, "v")
	require.NoError(t, err)
	parFiles, err := ListOutputs(parDir, "v")
	require.NoError(t, err)
	assert.Len(t, parFiles, len(seqFiles))
}

func TestSinkCancelled(t *testing.T) {
	acc := accumulate(t, 3)
	defer acc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	result := NewSink(SinkConfig{Dir: dir, Base: "v"}, nil).Persist(ctx, acc.Records())
	assert.Empty(t, result.Written)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 3, result.Skipped)
}

func TestSinkUnusableDirectory(t *testing.T) {
	acc := accumulate(t, 2)
	defer acc.Close()

	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	result := NewSink(SinkConfig{Dir: file, Base: "v"}, nil).Persist(context.Background(), acc.Records())
	assert.Empty(t, result.Written)
	assert.Len(t, result.Failures, 2)
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		index int
		ok    bool
	}{
		{name: "clip.mp4_frame_3.jpg", base: "clip.mp4", index: 3, ok: true},
		{name: "my_frame_video.mp4_frame_0.jpg", base: "my_frame_video.mp4", index: 0, ok: true},
		{name: "clip.mp4_frame_x.jpg", ok: false},
		{name: "clip.mp4_frame_3.png", ok: false},
		{name: "_frame_3.jpg", ok: false},
		{name: "frame-3.jpg", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, index, ok := ParseFileName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.base, base)
				assert.Equal(t, tt.index, index)
			}
		})
	}
}

func TestListOutputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4_frame_10.jpg", "b.mp4_frame_2.jpg", "a.mp4_frame_0.jpg", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	all, err := ListOutputs(dir, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.mp4", all[0].Base)
	assert.Equal(t, 2, all[1].Index)
	assert.Equal(t, 10, all[2].Index)

	only, err := ListOutputs(dir, "b.mp4")
	require.NoError(t, err)
	assert.Len(t, only, 2)

	_, err = ListOutputs(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}
