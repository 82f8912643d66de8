// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Quad is a quadrilateral in canonical order: top-left, top-right,
// bottom-right, bottom-left.
type Quad [4]Point2D

// Corner indices into a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// OrderCorners orders an unordered corner set.
//
// TL has the smallest x+y and BR the largest. TR has the smallest y-x and BL
// the largest. On ties the earliest input point wins, so a rotated square
// whose corners share a sum may order differently under relabeling.
func OrderCorners(pts [4]Point2D) Quad {
	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		s := pts[i].X + pts[i].Y
		d := pts[i].Y - pts[i].X
		if s < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if s > pts[br].X+pts[br].Y {
			br = i
		}
		if d < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if d > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	return Quad{pts[tl], pts[tr], pts[br], pts[bl]}
}

// Points returns the corners as a slice in quad order.
func (q Quad) Points() []Point2D {
	return []Point2D{q[0], q[1], q[2], q[3]}
}

// Area returns the unsigned area enclosed by the quad.
func (q Quad) Area() float64 {
	return math.Abs(PolygonArea(q.Points()))
}

// TargetSize returns the integer width and height of the rectangle a quad
// rectifies to: the longer of each pair of opposing edges, truncated.
func (q Quad) TargetSize() (width, height int) {
	widthA := q[BottomRight].Distance(q[BottomLeft])
	widthB := q[TopRight].Distance(q[TopLeft])
	heightA := q[TopRight].Distance(q[BottomRight])
	heightB := q[TopLeft].Distance(q[BottomLeft])
	return int(math.Max(widthA, widthB)), int(math.Max(heightA, heightB))
}

// Homography represents a 3x3 projective transform with H[2][2] normalized to 1.
// [h0 h1 h2]
// [h3 h4 h5]
// [h6 h7 1 ]
type Homography [9]float64

// Apply maps a point through the transform. It reports false when the point
// lands on the line at infinity.
func (h Homography) Apply(p Point2D) (Point2D, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point2D{}, false
	}
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// IsFinite returns true if no coefficient is NaN or infinite.
func (h Homography) IsFinite() bool {
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ToMatrix returns the transform as a [3][3]float64 array.
func (h Homography) ToMatrix() [3][3]float64 {
	return [3][3]float64{
		{h[0], h[1], h[2]},
		{h[3], h[4], h[5]},
		{h[6], h[7], h[8]},
	}
}
