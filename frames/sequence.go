package frames

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// SequenceFile is one image of an image sequence directory.
type SequenceFile struct {
	// Path is the path to the image file.
	Path string
	// Number is the frame number parsed from the file name.
	Number int
}

// ListSequence returns the frame-<N> images of dir, ordered by N.
//
// Files with other names or extensions are ignored.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []SequenceFile: The images in ascending frame number.
//   - error: Error if the directory cannot be read.
func ListSequence(dir string) ([]SequenceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []SequenceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if !strings.HasPrefix(stem, "frame-") {
			continue
		}
		number, err := strconv.Atoi(strings.TrimPrefix(stem, "frame-"))
		if err != nil {
			continue
		}

		files = append(files, SequenceFile{
			Path:   filepath.Join(dir, name),
			Number: number,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Number < files[j].Number
	})

	return files, nil
}

// ImageSequenceSource reads a directory of still images as a frame stream.
type ImageSequenceSource struct {
	files   []SequenceFile
	current gocv.Mat
	next    int
	done    bool
}

// OpenImageSequence opens a directory of frame-<N> images.
//
// Returns ErrSourceUnavailable (wrapped) if the directory cannot be read or
// holds no sequence images.
func OpenImageSequence(dir string) (*ImageSequenceSource, error) {
	files, err := ListSequence(dir)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "read %s: %v", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrSourceUnavailable, "no frame-<N> images in %s", dir)
	}

	return &ImageSequenceSource{files: files, current: gocv.NewMat()}, nil
}

// FrameCount returns the number of images in the sequence.
func (s *ImageSequenceSource) FrameCount() int { return len(s.files) }

// Next decodes the next image. An unreadable image ends the stream.
func (s *ImageSequenceSource) Next() (Frame, bool) {
	if s.done || s.next >= len(s.files) {
		s.done = true
		return Frame{}, false
	}

	mat := gocv.IMRead(s.files[s.next].Path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		s.done = true
		return Frame{}, false
	}

	s.current.Close()
	s.current = mat

	frame := Frame{Index: s.next, Mat: s.current}
	s.next++
	return frame, true
}

// Close releases the last decoded image.
func (s *ImageSequenceSource) Close() error {
	s.done = true
	return s.current.Close()
}
