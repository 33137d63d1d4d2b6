// Package framestest provides deterministic synthetic frames for tests.
package framestest

import (
	"image"
	"os"
	"path/filepath"
	"strconv"

	"gocv.io/x/gocv"
)

// Background is the gray level of generated static frames.
const Background = 128

// Generator creates deterministic BGR test frames with controlled motion.
//
// @example
// gen := framestest.NewGenerator(320, 240)
// frame := gen.Static()
// defer frame.Close()
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a generator for frames of the given dimensions.
func NewGenerator(width, height int) *Generator {
	return &Generator{width: width, height: height}
}

// Static creates a uniform mid-gray BGR frame.
func (g *Generator) Static() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(Background, Background, Background, 0),
		g.height, g.width, gocv.MatTypeCV8UC3)
}

// Square creates a static frame with a filled white square of side pixels
// whose top-left corner is at (x, y). The square covers exactly side*side
// pixels.
func (g *Generator) Square(x, y, side int) gocv.Mat {
	frame := g.Static()
	Fill(&frame, image.Rect(x, y, x+side, y+side), 255)
	return frame
}

// Fill paints rect on m with a uniform gray level.
func Fill(m *gocv.Mat, rect image.Rectangle, level float64) {
	region := m.Region(rect)
	defer region.Close()
	region.SetTo(gocv.NewScalar(level, level, level, 0))
}

// SquareContourArea is the contour area OpenCV reports for a filled square
// of side pixels. Contour vertices sit on pixel centers, so the polygon is
// one pixel narrower than the square on each axis.
func SquareContourArea(side int) float64 {
	return float64((side - 1) * (side - 1))
}

// MotionSequence returns n frames where frames before at are static and
// frames from at onwards carry a filled square. Only the comparison of frame
// at-1 with frame at sees a change.
func (g *Generator) MotionSequence(n, at, x, y, side int) []gocv.Mat {
	mats := make([]gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		if i < at {
			mats = append(mats, g.Static())
		} else {
			mats = append(mats, g.Square(x, y, side))
		}
	}
	return mats
}

// WriteSequence writes mats into dir as frame-<N>.png files, N starting at
// 0, and closes them.
func WriteSequence(dir string, mats []gocv.Mat) ([]string, error) {
	paths := make([]string, 0, len(mats))
	for i, m := range mats {
		path := filepath.Join(dir, "frame-"+strconv.Itoa(i)+".png")
		ok := gocv.IMWrite(path, m)
		m.Close()
		if !ok {
			return nil, os.ErrInvalid
		}
		paths = append(paths, path)
	}
	return paths, nil
}
