// Package images - Helpers for inspecting gocv Mats.
package images

import (
	"crypto/md5"
	"fmt"

	"gocv.io/x/gocv"
)

// ComputeMatChecksum generates a deterministic checksum of a Mat's
// dimensions, type and pixel data.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for an empty Mat.
//
// Example:
//
// ```go
//
//	checksum := ComputeMatChecksum(frame)
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%dx%d:%d;", mat.Cols(), mat.Rows(), mat.Channels(), mat.Type())

	if mat.IsContinuous() {
		data, _ := mat.DataPtrUint8()
		hash.Write(data)
	} else {
		clone := mat.Clone()
		defer clone.Close()
		data, _ := clone.DataPtrUint8()
		hash.Write(data)
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

// SameMat reports whether a and b have identical dimensions, type and pixels.
func SameMat(a, b gocv.Mat) bool {
	return ComputeMatChecksum(a) == ComputeMatChecksum(b)
}
