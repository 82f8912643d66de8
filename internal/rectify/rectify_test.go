package rectify

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

func TestPlan_HomographyMapsCornersOntoTarget(t *testing.T) {
	tests := []struct {
		name    string
		corners [4]geometry.Point2D
	}{
		{"axis aligned", [4]geometry.Point2D{{10, 10}, {210, 10}, {210, 160}, {10, 160}}},
		{"keystone", [4]geometry.Point2D{{60, 20}, {340, 35}, {390, 310}, {15, 290}}},
		{"shuffled", [4]geometry.Point2D{{390, 310}, {60, 20}, {15, 290}, {340, 35}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.corners)
			require.NoError(t, err)

			target := TargetCorners(plan.Width, plan.Height)
			for i, src := range plan.Quad {
				got, ok := plan.Homography.Apply(src)
				require.True(t, ok)
				assert.InDelta(t, target[i].X, got.X, 1e-6)
				assert.InDelta(t, target[i].Y, got.Y, 1e-6)
			}
		})
	}
}

func TestPlan_TargetSize(t *testing.T) {
	plan, err := Plan([4]geometry.Point2D{{0, 0}, {120.7, 0}, {100, 80}, {0, 60}})
	require.NoError(t, err)

	assert.Equal(t, 120, plan.Width)
	// Right edge is sqrt(20.7^2 + 80^2) ~ 82.6, longer than the left edge.
	assert.Equal(t, 82, plan.Height)
}

func TestPlan_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		corners [4]geometry.Point2D
	}{
		{"all collinear", [4]geometry.Point2D{{0, 0}, {10, 10}, {20, 20}, {30, 30}}},
		{"repeated corner", [4]geometry.Point2D{{0, 0}, {0, 0}, {50, 0}, {50, 50}}},
		{"all same", [4]geometry.Point2D{{7, 7}, {7, 7}, {7, 7}, {7, 7}}},
		{"three in a row", [4]geometry.Point2D{{0, 0}, {50, 0}, {100, 0}, {50, 80}}},
		{"too small", [4]geometry.Point2D{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
		{"rotated square", [4]geometry.Point2D{{100, 0}, {200, 100}, {100, 200}, {0, 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.corners)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGeometry), "got %v", err)
		})
	}
}

func TestRectify_ExtractsRegion(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 300, 400, gocv.MatTypeCV8UC3)
	defer src.Close()
	gocv.Rectangle(&src, image.Rect(50, 40, 250, 200), color.RGBA{R: 255, A: 255}, -1)

	out, res, err := Rectify(src, [4]geometry.Point2D{{249, 199}, {50, 40}, {249, 40}, {50, 199}})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 199, res.Width)
	assert.Equal(t, 159, res.Height)
	assert.Equal(t, res.Width, out.Cols())
	assert.Equal(t, res.Height, out.Rows())

	// Interior is pure red in BGR order.
	px := out.GetVecbAt(out.Rows()/2, out.Cols()/2)
	assert.Equal(t, uint8(0), px[0])
	assert.Equal(t, uint8(0), px[1])
	assert.Equal(t, uint8(255), px[2])
}

func TestRectify_EmptySource(t *testing.T) {
	src := gocv.NewMat()
	defer src.Close()

	out, _, err := Rectify(src, [4]geometry.Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	defer out.Close()
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}
