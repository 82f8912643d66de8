package cells

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"colorgrid/internal/grid"
	"colorgrid/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestLayout_StaysInsideImage(t *testing.T) {
	tests := []struct {
		width, height int
		dims          grid.Dimensions
	}{
		{400, 400, grid.Dimensions{Rows: 8, Cols: 8}},
		{403, 399, grid.Dimensions{Rows: 8, Cols: 8}},
		{250, 130, grid.Dimensions{Rows: 5, Cols: 9}},
	}

	for _, tt := range tests {
		rects, err := Layout(tt.width, tt.height, tt.dims, DefaultInset)
		require.NoError(t, err)
		require.Len(t, rects, tt.dims.Rows)

		cellW := tt.width / tt.dims.Cols
		cellH := tt.height / tt.dims.Rows
		assert.LessOrEqual(t, tt.dims.Cols*cellW, tt.width)
		assert.LessOrEqual(t, tt.dims.Rows*cellH, tt.height)

		bounds := image.Rect(0, 0, tt.width, tt.height)
		for _, row := range rects {
			require.Len(t, row, tt.dims.Cols)
			for _, r := range row {
				assert.False(t, r.Empty())
				assert.True(t, r.In(bounds), "%v outside %v", r, bounds)
			}
		}
	}
}

func TestLayout_Inset(t *testing.T) {
	rects, err := Layout(100, 100, grid.Dimensions{Rows: 2, Cols: 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(4, 4, 46, 46), rects[0][0])
	assert.Equal(t, image.Rect(54, 4, 96, 46), rects[0][1])
	assert.Equal(t, image.Rect(4, 54, 46, 96), rects[1][0])
}

func TestLayout_EmptyCellRegion(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"exactly twice the inset", 64, 64}, // 8px cells
		{"narrow columns", 60, 200},
		{"short rows", 200, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Layout(tt.width, tt.height, grid.Dimensions{Rows: 8, Cols: 8}, 4)
			assert.True(t, errors.Is(err, ErrEmptyCellRegion), "got %v", err)
		})
	}

	_, err := Layout(72, 72, grid.Dimensions{Rows: 8, Cols: 8}, 4)
	assert.NoError(t, err)
}

func TestLayout_InvalidArguments(t *testing.T) {
	_, err := Layout(100, 100, grid.Dimensions{}, 4)
	assert.Error(t, err)
	_, err = Layout(100, 100, grid.Dimensions{Rows: 2, Cols: 2}, -1)
	assert.Error(t, err)
}

func TestSample_MeansInRGBOrder(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	// Top-left red, bottom-right blue, with dark grid lines between cells.
	gocv.Rectangle(&img, image.Rect(0, 0, 100, 100), color.RGBA{R: 255, A: 255}, -1)
	gocv.Rectangle(&img, image.Rect(100, 0, 200, 100), color.RGBA{G: 200, A: 255}, -1)
	gocv.Rectangle(&img, image.Rect(0, 100, 100, 200), color.RGBA{R: 10, G: 20, B: 30, A: 255}, -1)
	gocv.Rectangle(&img, image.Rect(100, 100, 200, 200), color.RGBA{B: 255, A: 255}, -1)
	gocv.Line(&img, image.Pt(100, 0), image.Pt(100, 199), color.RGBA{A: 255}, 3)
	gocv.Line(&img, image.Pt(0, 100), image.Pt(199, 100), color.RGBA{A: 255}, 3)

	colors, err := Sample(img, grid.Dimensions{Rows: 2, Cols: 2}, DefaultInset)
	require.NoError(t, err)
	require.Len(t, colors, 2)

	assertColor(t, colorutil.RGB{R: 255}, colors[0][0])
	assertColor(t, colorutil.RGB{G: 200}, colors[0][1])
	assertColor(t, colorutil.RGB{R: 10, G: 20, B: 30}, colors[1][0])
	assertColor(t, colorutil.RGB{B: 255}, colors[1][1])

	flat := Flatten(colors)
	require.Len(t, flat, 4)
	assert.Equal(t, colors[1][0], flat[2])
}

func TestSample_EmptyImage(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	_, err := Sample(img, grid.Dimensions{Rows: 2, Cols: 2}, DefaultInset)
	assert.True(t, errors.Is(err, ErrEmptyCellRegion))
}

func TestMean_Grayscale(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 0, 0, 0), 20, 20, gocv.MatTypeCV8U)
	defer img.Close()

	got := Mean(img, image.Rect(2, 2, 10, 10))
	assertColor(t, colorutil.RGB{R: 90, G: 90, B: 90}, got)
}

func assertColor(t *testing.T, want, got colorutil.RGB) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 0.5, "red")
	assert.InDelta(t, want.G, got.G, 0.5, "green")
	assert.InDelta(t, want.B, got.B, 0.5, "blue")
}
