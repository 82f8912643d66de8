// Package render draws label grids and queen placements over a rectified board.
package render

import (
	"fmt"
	"image"

	"colorgrid/internal/cells"
	"colorgrid/internal/grid"
	"colorgrid/internal/queens"
	"colorgrid/pkg/colorutil"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// TintOpacity is the weight of region tints blended over the board.
const TintOpacity = 0.45

// Board tints every cell of a rectified board with its label's palette color,
// outlines the cells and marks the queens of sol, if any.
func Board(rectified gocv.Mat, labels [][]int, sol *queens.Solution) (image.Image, error) {
	if rectified.Empty() {
		return nil, fmt.Errorf("empty board image")
	}
	dims := grid.Dimensions{Rows: len(labels)}
	if dims.Rows > 0 {
		dims.Cols = len(labels[0])
	}
	for i, row := range labels {
		if len(row) != dims.Cols {
			return nil, fmt.Errorf("label row %d has %d cells, want %d", i, len(row), dims.Cols)
		}
	}

	rects, err := cells.Layout(rectified.Cols(), rectified.Rows(), dims, 0)
	if err != nil {
		return nil, err
	}

	base := gocv.NewMat()
	defer base.Close()
	switch rectified.Channels() {
	case 1:
		gocv.CvtColor(rectified, &base, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(rectified, &base, gocv.ColorBGRAToBGR)
	default:
		rectified.CopyTo(&base)
	}

	tints := base.Clone()
	defer tints.Close()
	for i, row := range rects {
		for j, r := range row {
			gocv.Rectangle(&tints, r, colorutil.PaletteColor(labels[i][j]), -1)
		}
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.AddWeighted(tints, TintOpacity, base, 1.0-TintOpacity, 0, &out)

	for _, row := range rects {
		for _, r := range row {
			gocv.Rectangle(&out, r, colorutil.Black, 1)
		}
	}

	if sol != nil {
		for i, col := range sol.Columns {
			if i >= len(rects) || col < 0 || col >= len(rects[i]) {
				return nil, fmt.Errorf("queen at row %d column %d is outside the %v grid", i, col, dims)
			}
			drawQueen(&out, rects[i][col])
		}
	}

	return out.ToImage()
}

func drawQueen(img *gocv.Mat, cell image.Rectangle) {
	center := image.Pt((cell.Min.X+cell.Max.X)/2, (cell.Min.Y+cell.Max.Y)/2)
	radius := min(cell.Dx(), cell.Dy()) / 4
	if radius < 1 {
		radius = 1
	}
	gocv.Circle(img, center, radius, colorutil.Black, -1)

	scale := float64(radius) / 20
	size := gocv.GetTextSize("Q", gocv.FontHersheySimplex, scale, 1)
	origin := image.Pt(center.X-size.X/2, center.Y+size.Y/2)
	gocv.PutText(img, "Q", origin, gocv.FontHersheySimplex, scale, colorutil.White, 1)
}

// Save writes img to path, shrinking it to fit within maxSide pixels on its
// longer side when maxSide is positive. The format follows the extension.
func Save(img image.Image, path string, maxSide int) error {
	if maxSide > 0 {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
