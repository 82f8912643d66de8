package geometry

import "math"

// collinearEpsilon is the cross-product magnitude below which three points
// are treated as lying on one line.
const collinearEpsilon = 1e-6

// IsConvex returns true if the polygon vertices form a convex polygon.
// The polygon is assumed to be simple (non-self-intersecting).
func IsConvex(polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	n := len(polygon)
	var sign int

	for i := 0; i < n; i++ {
		cross := crossProduct(
			polygon[i],
			polygon[(i+1)%n],
			polygon[(i+2)%n],
		)

		if cross != 0 {
			currentSign := 1
			if cross < 0 {
				currentSign = -1
			}

			if sign == 0 {
				sign = currentSign
			} else if currentSign != sign {
				return false
			}
		}
	}

	return sign != 0
}

// PolygonArea returns the signed area of a polygon using the shoelace formula.
// The sign is positive for counter-clockwise vertex order in a y-up frame
// (clockwise on screen).
func PolygonArea(polygon []Point2D) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return sum / 2
}

// Collinear returns true if a, b and c lie on a single line.
func Collinear(a, b, c Point2D) bool {
	return math.Abs(crossProduct(a, b, c)) < collinearEpsilon
}

// HasDuplicates returns true if any two points coincide.
func HasDuplicates(points []Point2D) bool {
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if distSq(points[i], points[j]) < collinearEpsilon {
				return true
			}
		}
	}
	return false
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
