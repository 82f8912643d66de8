// Package detect locates the board outline in a camera frame.
package detect

import (
	"errors"
	"fmt"
	"image"

	"colorgrid/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrBoardNotFound is returned when no convex four-sided region survives filtering.
var ErrBoardNotFound = errors.New("board not found")

// Options configures board detection.
type Options struct {
	BlurKernelSize int     // Gaussian kernel side, odd
	EdgeLow        float32 // Canny lower hysteresis threshold
	EdgeHigh       float32 // Canny upper hysteresis threshold
	ApproxEpsilon  float64 // Polygon approximation tolerance as a fraction of perimeter
}

// DefaultOptions returns default detection options.
func DefaultOptions() Options {
	return Options{
		BlurKernelSize: 5,
		EdgeLow:        50,
		EdgeHigh:       150,
		ApproxEpsilon:  0.02,
	}
}

// Candidate is a four-vertex polygon that passed the convexity filter.
type Candidate struct {
	Corners [4]geometry.Point2D // Vertices in contour order
	Area    float64
	Index   int // Position of the source contour in discovery order
}

// Locate finds the largest convex quadrilateral in img and returns its
// corners in canonical order.
//
// Candidates are compared with a strict greater-than on area, so when two
// contours enclose the same area the one discovered first by FindContours
// wins. That order depends on OpenCV's border-following scan and is not
// otherwise controlled.
func Locate(img gocv.Mat, opts Options) (geometry.Quad, error) {
	candidates, err := Candidates(img, opts)
	if err != nil {
		return geometry.Quad{}, err
	}

	best := -1
	var bestArea float64
	for i, c := range candidates {
		if c.Area > bestArea {
			bestArea = c.Area
			best = i
		}
	}
	if best < 0 {
		return geometry.Quad{}, ErrBoardNotFound
	}

	return geometry.OrderCorners(candidates[best].Corners), nil
}

// Candidates returns every convex quadrilateral approximation of the external
// contours in img, in contour discovery order.
func Candidates(img gocv.Mat, opts Options) ([]Candidate, error) {
	contours, err := Contours(img, opts)
	if err != nil {
		contours.Close()
		return nil, err
	}
	defer contours.Close()

	var candidates []Candidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		epsilon := opts.ApproxEpsilon * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		if approx.Size() != 4 {
			approx.Close()
			continue
		}

		var corners [4]geometry.Point2D
		for j, pt := range approx.ToPoints() {
			corners[j] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
		}
		if !geometry.IsConvex(corners[:]) {
			approx.Close()
			continue
		}

		candidates = append(candidates, Candidate{
			Corners: corners,
			Area:    gocv.ContourArea(approx),
			Index:   i,
		})
		approx.Close()
	}

	return candidates, nil
}

// Contours returns the external contours of the edge map of img, in
// discovery order. The caller owns the returned vector.
func Contours(img gocv.Mat, opts Options) (gocv.PointsVector, error) {
	if img.Empty() {
		return gocv.NewPointsVector(), fmt.Errorf("empty image: %w", ErrBoardNotFound)
	}

	edges, err := Edges(img, opts)
	if err != nil {
		return gocv.NewPointsVector(), err
	}
	defer edges.Close()

	return gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple), nil
}

// Edges blurs img and runs Canny edge detection on it. BGR input is
// converted to grayscale first. The caller owns the returned Mat.
func Edges(img gocv.Mat, opts Options) (gocv.Mat, error) {
	k := opts.BlurKernelSize
	if k <= 0 || k%2 == 0 {
		return gocv.NewMat(), fmt.Errorf("blur kernel size must be odd and positive, got %d", k)
	}

	gray := Grayscale(img)
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	gocv.Canny(blurred, &edges, opts.EdgeLow, opts.EdgeHigh)
	return edges, nil
}

// Grayscale returns a single-channel copy of img. The caller owns the returned Mat.
func Grayscale(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	switch img.Channels() {
	case 1:
		img.CopyTo(&gray)
	case 4:
		gocv.CvtColor(img, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}
	return gray
}
