// Package pipeline turns a photographed colored-grid board into a grid of
// color-class labels.
package pipeline

import (
	"fmt"
	"image"

	"colorgrid/internal/cells"
	"colorgrid/internal/classify"
	"colorgrid/internal/detect"
	"colorgrid/internal/grid"
	"colorgrid/internal/rectify"
	"colorgrid/pkg/colorutil"
	"colorgrid/pkg/geometry"

	"gocv.io/x/gocv"
)

// Logger receives debug output from a Reader.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// LabelGrid holds one color-class label per cell, indexed [row][col].
type LabelGrid [][]int

// Rows returns the number of rows.
func (g LabelGrid) Rows() int { return len(g) }

// Cols returns the number of columns.
func (g LabelGrid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Reading is the result of reading one board.
type Reading struct {
	Labels    LabelGrid
	Dims      grid.Dimensions
	Quad      geometry.Quad     // Board corners in the source frame
	Centroids []colorutil.RGB   // Centroids[l] is the mean color of label l
	Colors    [][]colorutil.RGB // Sampled cell colors
	Evidence  *grid.Evidence    // Nil when the grid size was fixed

	// Rectified is the perspective-corrected board. Release it with Close.
	Rectified gocv.Mat
}

// Close releases the rectified image.
func (r *Reading) Close() error {
	if r == nil {
		return nil
	}
	return r.Rectified.Close()
}

// Reader runs the detection, rectification, grid inference, sampling and
// classification stages in sequence. A Reader is safe for concurrent use.
type Reader struct {
	opts   Options
	logger Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger used for stage debug output.
func WithLogger(l Logger) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader validates opts and returns a Reader that uses them.
func NewReader(opts Options, ropts ...ReaderOption) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r := &Reader{opts: opts, logger: nopLogger{}}
	for _, o := range ropts {
		o(r)
	}
	return r, nil
}

// Options returns the options the reader was built with.
func (r *Reader) Options() Options {
	return r.opts
}

// ReadImage converts img to a BGR Mat and reads it.
func (r *Reader) ReadImage(img image.Image) (*Reading, error) {
	frame, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer frame.Close()
	return r.Read(frame)
}

// Read locates the board in a BGR frame and labels every cell. On success
// the caller must Close the returned Reading.
func (r *Reader) Read(frame gocv.Mat) (*Reading, error) {
	quad, err := detect.Locate(frame, r.opts.detect())
	if err != nil {
		return nil, fmt.Errorf("locate board: %w", err)
	}
	r.logger.Debugf("board corners: %v", quad)

	rectified, plan, err := rectify.Rectify(frame, quad)
	if err != nil {
		rectified.Close()
		return nil, fmt.Errorf("rectify board: %w", err)
	}
	r.logger.Debugf("rectified to %dx%d", plan.Width, plan.Height)

	reading, err := r.ReadRectified(rectified)
	if err != nil {
		rectified.Close()
		return nil, err
	}
	reading.Quad = plan.Quad
	return reading, nil
}

// ReadRectified labels the cells of an already rectified board. On success
// the returned Reading takes ownership of board.
func (r *Reader) ReadRectified(board gocv.Mat) (*Reading, error) {
	var (
		dims = grid.Dimensions{Rows: r.opts.GridSize, Cols: r.opts.GridSize}
		ev   *grid.Evidence
		err  error
	)
	if r.opts.GridSize == 0 {
		dims, ev, err = grid.Infer(board, r.opts.grid())
		if err != nil {
			return nil, fmt.Errorf("infer grid: %w", err)
		}
		r.logger.Debugf("grid %v from %d horizontal and %d vertical lines (fallback=%v)",
			dims, len(ev.Horizontal), len(ev.Vertical), ev.Fallback)
	}

	colors, err := cells.Sample(board, dims, r.opts.InsetMargin)
	if err != nil {
		return nil, fmt.Errorf("sample cells: %w", err)
	}

	res, err := classify.Classify(cells.Flatten(colors), r.opts.classify())
	if err != nil {
		return nil, fmt.Errorf("classify colors: %w", err)
	}
	r.logger.Debugf("%d clusters, compactness %.1f, counts %v", len(res.Centroids), res.Compactness, res.Counts)

	return &Reading{
		Labels:    reshape(res.Labels, dims),
		Dims:      dims,
		Centroids: res.Centroids,
		Colors:    colors,
		Evidence:  ev,
		Rectified: board,
	}, nil
}

// reshape splits row-major labels into rows.
func reshape(labels []int, dims grid.Dimensions) LabelGrid {
	g := make(LabelGrid, dims.Rows)
	for i := range g {
		g[i] = labels[i*dims.Cols : (i+1)*dims.Cols]
	}
	return g
}
