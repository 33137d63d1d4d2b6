package motion

import (
	"image"
	"iter"

	"gocv.io/x/gocv"
)

// Region is an external contour of a binary mask and its area.
type Region struct {
	// Index is the position of the contour in extraction order.
	Index int
	// Area is the contour's enclosed area as computed by gocv.ContourArea.
	Area float64
	// Bounds is the contour's bounding rectangle.
	Bounds image.Rectangle
}

// Regions holds the external contours found in a mask.
//
// Only outer boundaries are extracted; holes are ignored. Extraction order
// is OpenCV's order, not a spatial one.
type Regions struct {
	contours gocv.PointsVector
}

// ExtractRegions finds the external contours of mask.
//
// The result holds native memory and must be closed.
//
// @example
// regions := motion.ExtractRegions(mask)
// defer regions.Close()
//
//	for r := range regions.All() {
//	    fmt.Println(r.Area)
//	}
func ExtractRegions(mask gocv.Mat) *Regions {
	return &Regions{
		contours: gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple),
	}
}

// Len returns the number of regions.
func (r *Regions) Len() int { return r.contours.Size() }

// All yields the regions lazily. A region's area is computed only when the
// region is reached, so breaking out early skips the remaining contours.
func (r *Regions) All() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for i := 0; i < r.contours.Size(); i++ {
			contour := r.contours.At(i)
			region := Region{
				Index:  i,
				Area:   gocv.ContourArea(contour),
				Bounds: gocv.BoundingRect(contour),
			}
			if !yield(region) {
				return
			}
		}
	}
}

// Close releases the contour storage.
func (r *Regions) Close() {
	r.contours.Close()
}

// IsSignificant reports whether any region's area is strictly greater than
// cutoff. Evaluation stops at the first qualifying region; areas are never
// summed.
func IsSignificant(regions iter.Seq[Region], cutoff float64) bool {
	_, ok := FirstSignificant(regions, cutoff)
	return ok
}

// FirstSignificant returns the first region whose area is strictly greater
// than cutoff, with the same early exit as IsSignificant.
func FirstSignificant(regions iter.Seq[Region], cutoff float64) (Region, bool) {
	for region := range regions {
		if region.Area > cutoff {
			return region, true
		}
	}
	return Region{}, false
}
