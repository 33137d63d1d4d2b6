package capture

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OutputFile is a detection image found in an output directory.
type OutputFile struct {
	// Path is the path to the image file.
	Path string
	// Base is the video base name encoded in the file name.
	Base string
	// Index is the detection index encoded in the file name.
	Index int
}

// ParseFileName splits a <base>_frame_<index>.jpg name. ok is false for any
// other name.
func ParseFileName(name string) (base string, index int, ok bool) {
	if filepath.Ext(name) != ".jpg" {
		return "", 0, false
	}
	stem := strings.TrimSuffix(name, ".jpg")

	cut := strings.LastIndex(stem, "_frame_")
	if cut <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(stem[cut+len("_frame_"):])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return stem[:cut], index, true
}

// ListOutputs reads the detection images of dir.
//
// Arguments:
//   - dir: The output directory.
//   - base: Only list files of this video base name. Empty lists all.
//
// Returns:
//   - []OutputFile: Files ordered by base name, then detection index.
//   - error: Error if the directory cannot be read.
func ListOutputs(dir, base string) ([]OutputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []OutputFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, index, ok := ParseFileName(entry.Name())
		if !ok || (base != "" && b != base) {
			continue
		}
		files = append(files, OutputFile{
			Path:  filepath.Join(dir, entry.Name()),
			Base:  b,
			Index: index,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Base != files[j].Base {
			return files[i].Base < files[j].Base
		}
		return files[i].Index < files[j].Index
	})

	return files, nil
}
