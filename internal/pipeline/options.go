package pipeline

import (
	"fmt"

	"colorgrid/internal/cells"
	"colorgrid/internal/classify"
	"colorgrid/internal/detect"
	"colorgrid/internal/grid"
)

// Options holds every tunable of the reading pipeline.
type Options struct {
	// Board detection
	BlurKernelSize int
	EdgeLow        float32
	EdgeHigh       float32
	ApproxEpsilon  float64

	// Grid inference
	MinLineGap         int
	AxisTolerance      int
	HoughThreshold     int
	HoughMinLineLength float32
	HoughMaxLineGap    float32
	FallbackGridSize   int
	GridSize           int // Fixed rows and columns; 0 infers them

	// Sampling and classification
	InsetMargin int
	K           int
	Attempts    int
	Seed        int
}

// DefaultOptions returns the reference option values.
func DefaultOptions() Options {
	d := detect.DefaultOptions()
	g := grid.DefaultOptions()
	c := classify.DefaultOptions()
	return Options{
		BlurKernelSize:     d.BlurKernelSize,
		EdgeLow:            d.EdgeLow,
		EdgeHigh:           d.EdgeHigh,
		ApproxEpsilon:      d.ApproxEpsilon,
		MinLineGap:         g.MinLineGap,
		AxisTolerance:      g.AxisTolerance,
		HoughThreshold:     g.HoughThreshold,
		HoughMinLineLength: g.MinLineLength,
		HoughMaxLineGap:    g.MaxLineGap,
		FallbackGridSize:   g.FallbackGridSize,
		InsetMargin:        cells.DefaultInset,
		K:                  c.K,
		Attempts:           c.Attempts,
		Seed:               c.Seed,
	}
}

// Validate checks that the options can drive a reading.
func (o Options) Validate() error {
	if o.BlurKernelSize <= 0 || o.BlurKernelSize%2 == 0 {
		return fmt.Errorf("blur_kernel_size must be odd and positive, got %d", o.BlurKernelSize)
	}
	if o.EdgeLow < 0 || o.EdgeHigh < 0 {
		return fmt.Errorf("edge thresholds must not be negative")
	}
	if o.EdgeLow > o.EdgeHigh {
		return fmt.Errorf("edge_low (%v) must not exceed edge_high (%v)", o.EdgeLow, o.EdgeHigh)
	}
	if o.ApproxEpsilon <= 0 || o.ApproxEpsilon >= 1 {
		return fmt.Errorf("approx_epsilon must be in (0, 1), got %v", o.ApproxEpsilon)
	}
	if o.MinLineGap < 0 {
		return fmt.Errorf("min_line_gap must not be negative, got %d", o.MinLineGap)
	}
	if o.AxisTolerance < 0 {
		return fmt.Errorf("axis_tolerance must not be negative, got %d", o.AxisTolerance)
	}
	if o.HoughThreshold < 1 {
		return fmt.Errorf("hough_threshold must be positive, got %d", o.HoughThreshold)
	}
	if o.HoughMinLineLength < 0 || o.HoughMaxLineGap < 0 {
		return fmt.Errorf("hough line length and gap must not be negative")
	}
	if o.FallbackGridSize < 1 {
		return fmt.Errorf("fallback_grid_size must be positive, got %d", o.FallbackGridSize)
	}
	if o.GridSize < 0 {
		return fmt.Errorf("grid_size must not be negative, got %d", o.GridSize)
	}
	if o.InsetMargin < 0 {
		return fmt.Errorf("inset_margin must not be negative, got %d", o.InsetMargin)
	}
	if o.K < 1 {
		return fmt.Errorf("k must be positive, got %d", o.K)
	}
	if o.Attempts < classify.MinAttempts {
		return fmt.Errorf("attempts must be at least %d, got %d", classify.MinAttempts, o.Attempts)
	}
	return nil
}

func (o Options) detect() detect.Options {
	return detect.Options{
		BlurKernelSize: o.BlurKernelSize,
		EdgeLow:        o.EdgeLow,
		EdgeHigh:       o.EdgeHigh,
		ApproxEpsilon:  o.ApproxEpsilon,
	}
}

func (o Options) grid() grid.Options {
	return grid.Options{
		EdgeLow:          o.EdgeLow,
		EdgeHigh:         o.EdgeHigh,
		HoughThreshold:   o.HoughThreshold,
		MinLineLength:    o.HoughMinLineLength,
		MaxLineGap:       o.HoughMaxLineGap,
		AxisTolerance:    o.AxisTolerance,
		MinLineGap:       o.MinLineGap,
		FallbackGridSize: o.FallbackGridSize,
	}
}

func (o Options) classify() classify.Options {
	return classify.Options{K: o.K, Attempts: o.Attempts, Seed: o.Seed}
}
