// Package grid infers how many rows and columns a rectified board has.
package grid

import (
	"fmt"
	"math"
	"sort"

	"colorgrid/internal/detect"

	"gocv.io/x/gocv"
)

// Dimensions is a grid size in cells.
type Dimensions struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Valid returns true if both dimensions are positive.
func (d Dimensions) Valid() bool {
	return d.Rows >= 1 && d.Cols >= 1
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Rows, d.Cols)
}

// Options configures grid inference.
type Options struct {
	EdgeLow          float32 // Canny lower threshold
	EdgeHigh         float32 // Canny upper threshold
	HoughThreshold   int     // Accumulator votes needed for a line
	MinLineLength    float32 // Shortest segment HoughLinesP reports
	MaxLineGap       float32 // Largest gap bridged within one segment
	AxisTolerance    int     // Max endpoint spread for a segment to count as horizontal/vertical
	MinLineGap       int     // Positions closer than this are merged
	FallbackGridSize int     // Used when fewer than two lines are found on both axes
}

// DefaultOptions returns default inference options.
func DefaultOptions() Options {
	return Options{
		EdgeLow:          50,
		EdgeHigh:         150,
		HoughThreshold:   100,
		MinLineLength:    30,
		MaxLineGap:       10,
		AxisTolerance:    10,
		MinLineGap:       10,
		FallbackGridSize: 8,
	}
}

// Segment is a detected line segment in pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Orientation classifies a segment.
type Orientation int

const (
	Oblique Orientation = iota
	Horizontal
	Vertical
)

// Classify reports whether s is horizontal, vertical, or neither. A segment
// short enough to satisfy both tests counts as horizontal.
func (s Segment) Classify(tolerance int) Orientation {
	if abs(s.Y2-s.Y1) < tolerance {
		return Horizontal
	}
	if abs(s.X2-s.X1) < tolerance {
		return Vertical
	}
	return Oblique
}

// Evidence holds the deduplicated line positions behind an inference.
type Evidence struct {
	Segments   []Segment
	Horizontal []int // y positions
	Vertical   []int // x positions
	Fallback   bool  // true when the fallback size was used
}

// LineCount returns the larger of the two deduplicated line counts.
func (e *Evidence) LineCount() int {
	return max(len(e.Horizontal), len(e.Vertical))
}

// Infer estimates the grid size of a rectified board image.
//
// Rows and columns are both set to the same value: the larger deduplicated
// line count minus one. Boards with unequal row and column counts are not
// supported.
func Infer(img gocv.Mat, opts Options) (Dimensions, *Evidence, error) {
	if opts.FallbackGridSize < 1 {
		return Dimensions{}, nil, fmt.Errorf("fallback grid size must be positive, got %d", opts.FallbackGridSize)
	}
	if img.Empty() {
		return Dimensions{}, nil, fmt.Errorf("empty image")
	}

	segments := DetectSegments(img, opts)
	ev := Summarize(segments, opts)

	n := ev.LineCount() - 1
	if ev.LineCount() <= 1 {
		n = opts.FallbackGridSize
		ev.Fallback = true
	}
	return Dimensions{Rows: n, Cols: n}, ev, nil
}

// DetectSegments runs Canny and the probabilistic Hough transform on img.
func DetectSegments(img gocv.Mat, opts Options) []Segment {
	gray := detect.Grayscale(img)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, opts.EdgeLow, opts.EdgeHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, float32(math.Pi/180),
		opts.HoughThreshold, opts.MinLineLength, opts.MaxLineGap)

	segments := make([]Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, Segment{
			X1: int(v[0]), Y1: int(v[1]),
			X2: int(v[2]), Y2: int(v[3]),
		})
	}
	return segments
}

// Summarize classifies segments by axis, reduces each to its midpoint
// coordinate across that axis, and deduplicates both lists.
func Summarize(segments []Segment, opts Options) *Evidence {
	var hLines, vLines []int
	for _, s := range segments {
		switch s.Classify(opts.AxisTolerance) {
		case Horizontal:
			hLines = append(hLines, (s.Y1+s.Y2)/2)
		case Vertical:
			vLines = append(vLines, (s.X1+s.X2)/2)
		}
	}

	return &Evidence{
		Segments:   segments,
		Horizontal: Dedup(hLines, opts.MinLineGap),
		Vertical:   Dedup(vLines, opts.MinLineGap),
	}
}

// Dedup sorts positions and keeps each one only if it lies more than minGap
// beyond the last kept position. The input slice is not modified.
func Dedup(positions []int, minGap int) []int {
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)

	deduped := make([]int, 0, len(sorted))
	for _, p := range sorted {
		if len(deduped) == 0 || abs(p-deduped[len(deduped)-1]) > minGap {
			deduped = append(deduped, p)
		}
	}
	return deduped
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
