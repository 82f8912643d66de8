package detect

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"colorgrid/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// blankMat returns a BGR image filled with a single color.
func blankMat(width, height int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		height, width, gocv.MatTypeCV8UC3)
}

func assertNear(t *testing.T, want, got geometry.Point2D, tol float64) {
	t.Helper()
	assert.LessOrEqualf(t, want.Distance(got), tol, "want %v, got %v", want, got)
}

func TestLocate_AllBlackIsBoardNotFound(t *testing.T) {
	img := blankMat(320, 240, color.RGBA{A: 255})
	defer img.Close()

	_, err := Locate(img, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestLocate_EmptyMat(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	_, err := Locate(img, DefaultOptions())
	assert.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestLocate_FilledRectangle(t *testing.T) {
	img := blankMat(500, 400, color.RGBA{A: 255})
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(100, 80, 400, 300), color.RGBA{255, 255, 255, 255}, -1)

	quad, err := Locate(img, DefaultOptions())
	require.NoError(t, err)

	assertNear(t, geometry.Point2D{X: 100, Y: 80}, quad[geometry.TopLeft], 4)
	assertNear(t, geometry.Point2D{X: 400, Y: 80}, quad[geometry.TopRight], 4)
	assertNear(t, geometry.Point2D{X: 400, Y: 300}, quad[geometry.BottomRight], 4)
	assertNear(t, geometry.Point2D{X: 100, Y: 300}, quad[geometry.BottomLeft], 4)
}

func TestLocate_PrefersLargestArea(t *testing.T) {
	img := blankMat(600, 400, color.RGBA{A: 255})
	defer img.Close()
	white := color.RGBA{255, 255, 255, 255}
	gocv.Rectangle(&img, image.Rect(20, 20, 120, 120), white, -1)
	gocv.Rectangle(&img, image.Rect(250, 60, 550, 360), white, -1)

	candidates, err := Candidates(img, DefaultOptions())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(candidates), 2)

	quad, err := Locate(img, DefaultOptions())
	require.NoError(t, err)
	assertNear(t, geometry.Point2D{X: 250, Y: 60}, quad[geometry.TopLeft], 4)
	assertNear(t, geometry.Point2D{X: 550, Y: 360}, quad[geometry.BottomRight], 4)
}

func TestLocate_IgnoresNonQuadrilaterals(t *testing.T) {
	img := blankMat(400, 400, color.RGBA{A: 255})
	defer img.Close()
	gocv.Circle(&img, image.Pt(200, 200), 120, color.RGBA{255, 255, 255, 255}, -1)

	_, err := Locate(img, DefaultOptions())
	assert.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestContours_OnePerShape(t *testing.T) {
	img := blankMat(600, 400, color.RGBA{A: 255})
	defer img.Close()
	white := color.RGBA{255, 255, 255, 255}
	gocv.Rectangle(&img, image.Rect(20, 20, 120, 120), white, -1)
	gocv.Rectangle(&img, image.Rect(250, 60, 550, 360), white, -1)

	contours, err := Contours(img, DefaultOptions())
	require.NoError(t, err)
	defer contours.Close()
	assert.Equal(t, 2, contours.Size())
}

func TestContours_EmptyMat(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	contours, err := Contours(img, DefaultOptions())
	defer contours.Close()
	assert.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestEdges_RejectsEvenKernel(t *testing.T) {
	img := blankMat(50, 50, color.RGBA{A: 255})
	defer img.Close()

	opts := DefaultOptions()
	opts.BlurKernelSize = 4
	edges, err := Edges(img, opts)
	defer edges.Close()
	assert.Error(t, err)
}

func TestGrayscale_Channels(t *testing.T) {
	img := blankMat(10, 10, color.RGBA{10, 20, 30, 255})
	defer img.Close()

	gray := Grayscale(img)
	defer gray.Close()
	assert.Equal(t, 1, gray.Channels())

	again := Grayscale(gray)
	defer again.Close()
	assert.Equal(t, 1, again.Channels())
}
