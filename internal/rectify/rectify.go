// Package rectify removes perspective distortion from a located board.
package rectify

import (
	"errors"
	"fmt"
	"image"
	"math"

	"colorgrid/pkg/geometry"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidGeometry is returned for degenerate quadrilaterals: repeated or
// collinear corners, zero area, or a target rectangle too small to sample.
var ErrInvalidGeometry = errors.New("invalid geometry")

// minAreaPx is the smallest quad area accepted, in square pixels.
const minAreaPx = 1.0

// Result describes a completed rectification.
type Result struct {
	Quad       geometry.Quad       // Source corners in canonical order
	Homography geometry.Homography // Maps Quad onto the target rectangle
	Width      int
	Height     int
}

// Plan orders the corners, validates them and computes the target size and
// homography without touching pixels.
func Plan(corners [4]geometry.Point2D) (*Result, error) {
	quad := geometry.OrderCorners(corners)
	if err := validate(quad); err != nil {
		return nil, err
	}

	width, height := quad.TargetSize()
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("target size %dx%d: %w", width, height, ErrInvalidGeometry)
	}

	dst := TargetCorners(width, height)
	h, err := ComputeHomography(quad, dst)
	if err != nil {
		return nil, err
	}

	return &Result{
		Quad:       quad,
		Homography: h,
		Width:      width,
		Height:     height,
	}, nil
}

// Rectify warps the quadrilateral region of src onto an axis-aligned image.
// The caller owns the returned Mat.
func Rectify(src gocv.Mat, corners [4]geometry.Point2D) (gocv.Mat, *Result, error) {
	if src.Empty() {
		return gocv.NewMat(), nil, fmt.Errorf("empty source image: %w", ErrInvalidGeometry)
	}

	plan, err := Plan(corners)
	if err != nil {
		return gocv.NewMat(), nil, err
	}

	return WarpPerspective(src, plan.Homography, plan.Width, plan.Height), plan, nil
}

// TargetCorners returns the destination rectangle corners for a width x height output.
func TargetCorners(width, height int) geometry.Quad {
	w := float64(width - 1)
	h := float64(height - 1)
	return geometry.Quad{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// ComputeHomography computes the projective transform mapping each src corner
// onto the matching dst corner.
func ComputeHomography(src, dst geometry.Quad) (geometry.Homography, error) {
	// Build matrix equation with h8 fixed to 1:
	// u = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
	// v = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		A.SetRow(i*2, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		B.SetVec(i*2, u)

		A.SetRow(i*2+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		B.SetVec(i*2+1, v)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return geometry.Homography{}, fmt.Errorf("solve homography: %v: %w", err, ErrInvalidGeometry)
	}

	var h geometry.Homography
	for i := 0; i < 8; i++ {
		h[i] = params.AtVec(i)
	}
	h[8] = 1

	if !h.IsFinite() {
		return geometry.Homography{}, fmt.Errorf("non-finite homography: %w", ErrInvalidGeometry)
	}
	return h, nil
}

// WarpPerspective applies a homography to an image, producing a width x height
// result. Every output pixel is sampled from the source through the inverse
// transform with bilinear interpolation.
func WarpPerspective(src gocv.Mat, h geometry.Homography, width, height int) gocv.Mat {
	// Create transform matrix for GoCV
	transformMat := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer transformMat.Close()
	m := h.ToMatrix()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			transformMat.SetDoubleAt(r, c, m[r][c])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpPerspective(src, &dst, transformMat, image.Point{X: width, Y: height})
	return dst
}

// validate rejects quads that cannot define a projective mapping.
func validate(q geometry.Quad) error {
	pts := q.Points()
	if geometry.HasDuplicates(pts) {
		return fmt.Errorf("repeated corner in %v: %w", pts, ErrInvalidGeometry)
	}
	for i := 0; i < 4; i++ {
		if geometry.Collinear(pts[i], pts[(i+1)%4], pts[(i+2)%4]) {
			return fmt.Errorf("collinear corners in %v: %w", pts, ErrInvalidGeometry)
		}
	}
	if area := q.Area(); area < minAreaPx || math.IsNaN(area) {
		return fmt.Errorf("quad area %.3f: %w", area, ErrInvalidGeometry)
	}
	return nil
}
