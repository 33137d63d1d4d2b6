package motion

import (
	"image"
	"iter"
	"testing"

	"github.com/nvr-ai/go-motion/frames/framestest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newMask(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC1)
}

func TestGrayscale(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)

	bgr := gen.Static()
	defer bgr.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	require.NoError(t, Grayscale(bgr, &gray))
	assert.Equal(t, 1, gray.Channels())
	assert.Equal(t, bgr.Rows(), gray.Rows())
	assert.Equal(t, bgr.Cols(), gray.Cols())
	assert.Equal(t, uint8(framestest.Background), gray.GetUCharAt(10, 10))

	single := newMask(64, 48)
	defer single.Close()
	out := gocv.NewMat()
	defer out.Close()
	require.NoError(t, Grayscale(single, &out))
	assert.Equal(t, 1, out.Channels())

	twoChannel := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC2)
	defer twoChannel.Close()
	assert.Error(t, Grayscale(twoChannel, &out))
}

func TestDifferencerFirstFrameSeedsBaseline(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)
	frame := gen.Static()
	defer frame.Close()

	d := NewDifferencer()
	defer d.Close()

	assert.False(t, d.HasBaseline())
	_, ok, err := d.Observe(frame)
	require.NoError(t, err)
	assert.False(t, ok, "first frame never produces a difference")
	assert.True(t, d.HasBaseline())
}

func TestDifferencerIdenticalFrames(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)
	a := gen.Static()
	defer a.Close()
	b := gen.Static()
	defer b.Close()

	d := NewDifferencer()
	defer d.Close()

	_, _, err := d.Observe(a)
	require.NoError(t, err)
	diff, ok, err := d.Observe(b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, gocv.CountNonZero(diff))
}

func TestDifferencerReplacesBaselineUnconditionally(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)
	static := gen.Static()
	defer static.Close()
	moved := gen.Square(10, 10, 20)
	defer moved.Close()
	movedAgain := gen.Square(10, 10, 20)
	defer movedAgain.Close()

	d := NewDifferencer()
	defer d.Close()

	_, _, err := d.Observe(static)
	require.NoError(t, err)

	diff, ok, err := d.Observe(moved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 400, gocv.CountNonZero(diff))

	diff, ok, err = d.Observe(movedAgain)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, gocv.CountNonZero(diff), "comparison is against the previous frame, not the first one")
}

func TestDifferencerDimensionMismatch(t *testing.T) {
	small := framestest.NewGenerator(32, 24).Static()
	defer small.Close()
	large := framestest.NewGenerator(64, 48).Static()
	defer large.Close()

	d := NewDifferencer()
	defer d.Close()

	_, _, err := d.Observe(small)
	require.NoError(t, err)
	_, _, err = d.Observe(large)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestDifferencerReset(t *testing.T) {
	frame := framestest.NewGenerator(16, 16).Static()
	defer frame.Close()

	d := NewDifferencer()
	defer d.Close()

	_, _, err := d.Observe(frame)
	require.NoError(t, err)
	d.Reset()
	_, ok, err := d.Observe(frame)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThresholdIsStrict(t *testing.T) {
	diff := newMask(20, 10)
	defer diff.Close()
	framestest.Fill(&diff, image.Rect(0, 0, 10, 10), 30)
	framestest.Fill(&diff, image.Rect(10, 0, 20, 10), 31)

	mask := gocv.NewMat()
	defer mask.Close()
	Threshold(diff, &mask, 30)

	assert.Equal(t, uint8(0), mask.GetUCharAt(5, 5), "diff equal to the cutoff stays unchanged")
	assert.Equal(t, uint8(255), mask.GetUCharAt(5, 15))
	assert.Equal(t, 100, gocv.CountNonZero(mask))
}

func TestExtractRegionsExternalOnly(t *testing.T) {
	mask := newMask(120, 120)
	defer mask.Close()
	framestest.Fill(&mask, image.Rect(20, 20, 60, 60), 255)
	framestest.Fill(&mask, image.Rect(35, 35, 45, 45), 0)
	framestest.Fill(&mask, image.Rect(80, 80, 90, 90), 255)

	regions := ExtractRegions(mask)
	defer regions.Close()
	require.Equal(t, 2, regions.Len())

	areas := map[float64]bool{}
	for r := range regions.All() {
		areas[r.Area] = true
	}
	assert.True(t, areas[framestest.SquareContourArea(40)], "hole does not reduce the outer area")
	assert.True(t, areas[framestest.SquareContourArea(10)])
}

func TestExtractRegionsEmptyMask(t *testing.T) {
	mask := newMask(50, 50)
	defer mask.Close()

	regions := ExtractRegions(mask)
	defer regions.Close()
	assert.Equal(t, 0, regions.Len())
	assert.False(t, IsSignificant(regions.All(), 1))
}

func seqOf(counter *int, areas ...float64) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for i, a := range areas {
			*counter++
			if !yield(Region{Index: i, Area: a}) {
				return
			}
		}
	}
}

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		name     string
		areas    []float64
		cutoff   float64
		expected bool
		visited  int
	}{
		{name: "no regions", areas: nil, cutoff: 500, expected: false, visited: 0},
		{name: "equal to cutoff", areas: []float64{500}, cutoff: 500, expected: false, visited: 1},
		{name: "above cutoff", areas: []float64{501}, cutoff: 500, expected: true, visited: 1},
		{name: "many small regions", areas: []float64{400, 400, 400}, cutoff: 500, expected: false, visited: 3},
		{name: "stops at first match", areas: []float64{10, 900, 2000, 3000}, cutoff: 500, expected: true, visited: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visited := 0
			assert.Equal(t, tt.expected, IsSignificant(seqOf(&visited, tt.areas...), tt.cutoff))
			assert.Equal(t, tt.visited, visited)
		})
	}

	visited := 0
	region, ok := FirstSignificant(seqOf(&visited, 10, 900, 2000), 500)
	require.True(t, ok)
	assert.Equal(t, 1, region.Index)
}

func TestDetectorIdenticalFramesNeverSignificant(t *testing.T) {
	gen := framestest.NewGenerator(64, 48)
	for _, cfg := range []Config{
		{DiffThreshold: 1, AreaThreshold: 1},
		{DiffThreshold: 30, AreaThreshold: 500},
		{DiffThreshold: 254, AreaThreshold: 1e6},
	} {
		a := gen.Square(5, 5, 30)
		b := gen.Square(5, 5, 30)

		detector := NewDetector(cfg)
		first, err := detector.Observe(a)
		require.NoError(t, err)
		assert.False(t, first.Compared)

		second, err := detector.Observe(b)
		require.NoError(t, err)
		assert.True(t, second.Compared)
		assert.False(t, second.Detected)

		detector.Close()
		a.Close()
		b.Close()
	}
}

func TestDetectorAreaCutoffIsStrict(t *testing.T) {
	const side = 30
	area := framestest.SquareContourArea(side)
	gen := framestest.NewGenerator(160, 120)

	tests := []struct {
		name     string
		cutoff   float64
		expected bool
	}{
		{name: "area equals cutoff", cutoff: area, expected: false},
		{name: "area above cutoff", cutoff: area - 1, expected: true},
		{name: "area below cutoff", cutoff: area + 1, expected: false},
		{name: "default cutoff", cutoff: DefaultAreaThreshold, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := gen.Static()
			defer before.Close()
			after := gen.Square(40, 40, side)
			defer after.Close()

			detector := NewDetector(Config{DiffThreshold: DefaultDiffThreshold, AreaThreshold: tt.cutoff})
			defer detector.Close()

			_, err := detector.Observe(before)
			require.NoError(t, err)
			result, err := detector.Observe(after)
			require.NoError(t, err)
			require.True(t, result.Compared)
			assert.Equal(t, tt.expected, result.Detected)
			if tt.expected {
				assert.Equal(t, area, result.Trigger.Area)
				assert.Equal(t, image.Rect(40, 40, 40+side, 40+side), result.Trigger.Bounds)
			}
			assert.Equal(t, side*side, gocv.CountNonZero(detector.Mask()))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{DiffThreshold: 0, AreaThreshold: 500}.Validate())
	assert.Error(t, Config{DiffThreshold: 30, AreaThreshold: -1}.Validate())
}
