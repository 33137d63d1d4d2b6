package frames

import "gocv.io/x/gocv"

// SliceSource yields frames from an in-memory list of Mats.
//
// The source takes ownership of the Mats and closes them in Close.
type SliceSource struct {
	mats []gocv.Mat
	next int
}

// NewSliceSource wraps mats as a Source.
func NewSliceSource(mats ...gocv.Mat) *SliceSource {
	return &SliceSource{mats: mats}
}

// FrameCount returns the number of Mats.
func (s *SliceSource) FrameCount() int { return len(s.mats) }

// Next returns the next Mat, or ok=false when the list is exhausted.
func (s *SliceSource) Next() (Frame, bool) {
	if s.next >= len(s.mats) {
		return Frame{}, false
	}
	frame := Frame{Index: s.next, Mat: s.mats[s.next]}
	s.next++
	return frame, true
}

// Close releases every Mat.
func (s *SliceSource) Close() error {
	for _, m := range s.mats {
		m.Close()
	}
	s.mats = nil
	return nil
}
