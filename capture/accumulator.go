// Package capture - Accumulation and persistence of frames flagged as motion.
package capture

import (
	"github.com/nvr-ai/go-motion/frames"
	"gocv.io/x/gocv"
)

// Record is a flagged frame kept for output.
type Record struct {
	// Index is the 0-based detection index, independent of the source index.
	Index int
	// SourceIndex is the index of the frame in its source.
	SourceIndex int
	// Mat is an owned copy of the frame.
	Mat gocv.Mat
}

// RecordInfo describes a record without its pixels.
type RecordInfo struct {
	Index       int `json:"index"`
	SourceIndex int `json:"source_index"`
}

// Accumulator collects flagged frames in arrival order.
//
// It is owned by a single worker and is not safe for concurrent use.
type Accumulator struct {
	records []Record
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add stores a copy of frame under the next detection index.
//
// The frame is cloned because sources reuse their decode buffer.
func (a *Accumulator) Add(frame frames.Frame) Record {
	record := Record{
		Index:       len(a.records),
		SourceIndex: frame.Index,
		Mat:         frame.Mat.Clone(),
	}
	a.records = append(a.records, record)
	return record
}

// Len returns the number of records.
func (a *Accumulator) Len() int { return len(a.records) }

// Records returns the records in detection order. The Mats remain owned by
// the Accumulator.
func (a *Accumulator) Records() []Record { return a.records }

// Infos returns the index mapping of every record.
func (a *Accumulator) Infos() []RecordInfo {
	infos := make([]RecordInfo, len(a.records))
	for i, r := range a.records {
		infos[i] = RecordInfo{Index: r.Index, SourceIndex: r.SourceIndex}
	}
	return infos
}

// Close releases every stored frame.
func (a *Accumulator) Close() {
	for _, r := range a.records {
		r.Mat.Close()
	}
	a.records = nil
}
