// Package cells samples the mean color of every grid cell on a rectified board.
package cells

import (
	"errors"
	"fmt"
	"image"

	"colorgrid/internal/grid"
	"colorgrid/pkg/colorutil"

	"gocv.io/x/gocv"
)

// ErrEmptyCellRegion is returned when the inset leaves no pixels in a cell.
var ErrEmptyCellRegion = errors.New("empty cell region")

// DefaultInset is the margin, in pixels, trimmed from every side of a cell
// so grid lines and borders do not bleed into its color.
const DefaultInset = 4

// Layout returns the inset sampling rectangle of every cell, row-major.
// Cell size is the image size divided by the grid size, rounded down; any
// remainder pixels at the right and bottom edges are never sampled.
func Layout(width, height int, dims grid.Dimensions, inset int) ([][]image.Rectangle, error) {
	if !dims.Valid() {
		return nil, fmt.Errorf("invalid grid dimensions %v", dims)
	}
	if inset < 0 {
		return nil, fmt.Errorf("inset must not be negative, got %d", inset)
	}

	cellW := width / dims.Cols
	cellH := height / dims.Rows
	if cellW <= 2*inset || cellH <= 2*inset {
		return nil, fmt.Errorf("cell %dx%d with inset %d: %w", cellW, cellH, inset, ErrEmptyCellRegion)
	}

	rects := make([][]image.Rectangle, dims.Rows)
	for i := range rects {
		rects[i] = make([]image.Rectangle, dims.Cols)
		for j := range rects[i] {
			rects[i][j] = image.Rect(
				j*cellW+inset, i*cellH+inset,
				(j+1)*cellW-inset, (i+1)*cellH-inset,
			)
		}
	}
	return rects, nil
}

// Sample returns the mean RGB color of each inset cell of a BGR image,
// indexed [row][col].
func Sample(img gocv.Mat, dims grid.Dimensions, inset int) ([][]colorutil.RGB, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image: %w", ErrEmptyCellRegion)
	}

	rects, err := Layout(img.Cols(), img.Rows(), dims, inset)
	if err != nil {
		return nil, err
	}

	colors := make([][]colorutil.RGB, len(rects))
	for i, row := range rects {
		colors[i] = make([]colorutil.RGB, len(row))
		for j, r := range row {
			colors[i][j] = Mean(img, r)
		}
	}
	return colors, nil
}

// Mean returns the average color of rect within a BGR (or grayscale) image.
func Mean(img gocv.Mat, rect image.Rectangle) colorutil.RGB {
	region := img.Region(rect)
	defer region.Close()

	m := region.Mean()
	if img.Channels() == 1 {
		return colorutil.RGB{R: m.Val1, G: m.Val1, B: m.Val1}
	}
	return colorutil.RGB{R: m.Val3, G: m.Val2, B: m.Val1}
}

// Flatten returns the colors in row-major order.
func Flatten(colors [][]colorutil.RGB) []colorutil.RGB {
	var flat []colorutil.RGB
	for _, row := range colors {
		flat = append(flat, row...)
	}
	return flat
}
