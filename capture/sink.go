package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DefaultOutputDir is the default name of the output directory.
const DefaultOutputDir = "yakalanan_hareketler"

// DefaultJPEGQuality is the default JPEG encoding quality.
const DefaultJPEGQuality = 95

// FileName returns the output file name for a detection index:
// <base>_frame_<index>.jpg, where base is the video's base name.
func FileName(base string, index int) string {
	return fmt.Sprintf("%s_frame_%d.jpg", base, index)
}

// EnsureDir creates dir and any missing parents. It is a no-op when dir
// already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", dir)
	}
	return nil
}

// WriteFailure records a single record that could not be written.
type WriteFailure struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Err   error  `json:"-"`
}

// Error implements error.
func (f WriteFailure) Error() string {
	return fmt.Sprintf("write detection %d to %s: %v", f.Index, f.Path, f.Err)
}

// Unwrap returns the underlying write error.
func (f WriteFailure) Unwrap() error { return f.Err }

// PersistResult is the outcome of writing a batch of records.
type PersistResult struct {
	// Written holds the paths that were written, in detection order.
	Written []string
	// Failures holds the records that could not be written, in detection order.
	Failures []WriteFailure
	// Skipped counts records not attempted because the context was cancelled.
	Skipped int
}

// SinkConfig configures a Sink.
type SinkConfig struct {
	// Dir is the output directory.
	Dir string
	// Base is the video base name used as file name prefix.
	Base string
	// Workers is the number of concurrent writers. Values below 1 mean 1.
	Workers int
	// Quality is the JPEG quality (1..100). Zero means DefaultJPEGQuality.
	Quality int
}

// Sink writes records as JPEG files.
type Sink struct {
	config SinkConfig
	logger *zap.Logger
}

// NewSink creates a Sink. A nil logger discards log output.
func NewSink(config SinkConfig, logger *zap.Logger) *Sink {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Quality == 0 {
		config.Quality = DefaultJPEGQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{config: config, logger: logger}
}

// Path returns the output path of detection index.
func (s *Sink) Path(index int) string {
	return filepath.Join(s.config.Dir, FileName(s.config.Base, index))
}

// Persist writes every record. A failed write is logged and recorded; the
// remaining records are still written.
//
// With more than one worker the writes run concurrently, but Written and
// Failures are always in detection order. Cancelling ctx stops new writes;
// files already written are left in place.
//
// Arguments:
//   - ctx: Cancels pending writes.
//   - records: The records to write, in detection order.
//
// Returns:
//   - PersistResult: Written paths, failures and the number of skipped records.
func (s *Sink) Persist(ctx context.Context, records []Record) PersistResult {
	if err := EnsureDir(s.config.Dir); err != nil {
		result := PersistResult{}
		for _, r := range records {
			result.Failures = append(result.Failures, WriteFailure{Index: r.Index, Path: s.Path(r.Index), Err: err})
		}
		s.logger.Error("output directory unavailable", zap.String("dir", s.config.Dir), zap.Error(err))
		return result
	}

	type outcome struct {
		attempted bool
		path      string
		err       error
	}
	outcomes := make([]outcome, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := s.Path(records[i].Index)
				outcomes[i] = outcome{attempted: true, path: path, err: s.write(path, records[i].Mat)}
			}
		}()
	}

dispatch:
	for i := range records {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var result PersistResult
	for i, o := range outcomes {
		switch {
		case !o.attempted:
			result.Skipped++
		case o.err != nil:
			failure := WriteFailure{Index: records[i].Index, Path: o.path, Err: o.err}
			s.logger.Error("failed to write detection", zap.Int("index", failure.Index),
				zap.String("path", failure.Path), zap.Error(o.err))
			result.Failures = append(result.Failures, failure)
		default:
			result.Written = append(result.Written, o.path)
		}
	}

	return result
}

// write encodes m as JPEG and writes it to path.
func (s *Sink) write(path string, m gocv.Mat) error {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, m, []int{int(gocv.IMWriteJpegQuality), s.config.Quality})
	if err != nil {
		return errors.Wrap(err, "encode jpeg")
	}
	defer buf.Close()

	if err := os.WriteFile(path, buf.GetBytes(), 0o644); err != nil {
		return errors.Wrap(err, "write file")
	}
	return nil
}
