// Package config loads reading options from a JSON file.
//
// Every field is optional; an omitted field keeps its default value. A
// typical file overrides only what a particular camera setup needs:
//
//	{
//	  "edge_low": 30,
//	  "edge_high": 120,
//	  "k": 6
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"colorgrid/internal/pipeline"
)

const (
	appDir      = "colorgrid"
	optionsFile = "options.json"
	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// Config holds optional overrides for pipeline.Options.
type Config struct {
	BlurKernelSize *int     `json:"blur_kernel_size,omitempty"`
	EdgeLow        *float64 `json:"edge_low,omitempty"`
	EdgeHigh       *float64 `json:"edge_high,omitempty"`
	ApproxEpsilon  *float64 `json:"approx_epsilon,omitempty"`

	MinLineGap         *int     `json:"min_line_gap,omitempty"`
	AxisTolerance      *int     `json:"axis_tolerance,omitempty"`
	HoughThreshold     *int     `json:"hough_threshold,omitempty"`
	HoughMinLineLength *float64 `json:"hough_min_line_length,omitempty"`
	HoughMaxLineGap    *float64 `json:"hough_max_line_gap,omitempty"`
	FallbackGridSize   *int     `json:"fallback_grid_size,omitempty"`
	GridSize           *int     `json:"grid_size,omitempty"` // 0 infers the grid

	InsetMargin *int `json:"inset_margin,omitempty"`
	K           *int `json:"k,omitempty"`
	Attempts    *int `json:"attempts,omitempty"`
	Seed        *int `json:"seed,omitempty"`
}

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// Empty returns a config with no overrides.
func Empty() *Config {
	return &Config{}
}

// FromOptions returns a config with every field set from o.
func FromOptions(o pipeline.Options) *Config {
	return &Config{
		BlurKernelSize:     ptrInt(o.BlurKernelSize),
		EdgeLow:            ptrFloat64(float64(o.EdgeLow)),
		EdgeHigh:           ptrFloat64(float64(o.EdgeHigh)),
		ApproxEpsilon:      ptrFloat64(o.ApproxEpsilon),
		MinLineGap:         ptrInt(o.MinLineGap),
		AxisTolerance:      ptrInt(o.AxisTolerance),
		HoughThreshold:     ptrInt(o.HoughThreshold),
		HoughMinLineLength: ptrFloat64(float64(o.HoughMinLineLength)),
		HoughMaxLineGap:    ptrFloat64(float64(o.HoughMaxLineGap)),
		FallbackGridSize:   ptrInt(o.FallbackGridSize),
		GridSize:           ptrInt(o.GridSize),
		InsetMargin:        ptrInt(o.InsetMargin),
		K:                  ptrInt(o.K),
		Attempts:           ptrInt(o.Attempts),
		Seed:               ptrInt(o.Seed),
	}
}

// Load reads and validates a JSON config file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the per-user options file location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, optionsFile)
}

// LoadDefault loads the per-user options file, or returns an empty config if
// there is none.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	return cfg, err
}

// Save writes the config to path as indented JSON, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the options the config resolves to.
func (c *Config) Validate() error {
	return c.Options().Validate()
}

// Options resolves the config against the defaults.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		BlurKernelSize:     c.GetBlurKernelSize(),
		EdgeLow:            float32(c.GetEdgeLow()),
		EdgeHigh:           float32(c.GetEdgeHigh()),
		ApproxEpsilon:      c.GetApproxEpsilon(),
		MinLineGap:         c.GetMinLineGap(),
		AxisTolerance:      c.GetAxisTolerance(),
		HoughThreshold:     c.GetHoughThreshold(),
		HoughMinLineLength: float32(c.GetHoughMinLineLength()),
		HoughMaxLineGap:    float32(c.GetHoughMaxLineGap()),
		FallbackGridSize:   c.GetFallbackGridSize(),
		GridSize:           c.GetGridSize(),
		InsetMargin:        c.GetInsetMargin(),
		K:                  c.GetK(),
		Attempts:           c.GetAttempts(),
		Seed:               c.GetSeed(),
	}
}

var defaults = pipeline.DefaultOptions()

// GetBlurKernelSize returns the blur_kernel_size value or the default.
func (c *Config) GetBlurKernelSize() int {
	if c.BlurKernelSize == nil {
		return defaults.BlurKernelSize
	}
	return *c.BlurKernelSize
}

// GetEdgeLow returns the edge_low value or the default.
func (c *Config) GetEdgeLow() float64 {
	if c.EdgeLow == nil {
		return float64(defaults.EdgeLow)
	}
	return *c.EdgeLow
}

// GetEdgeHigh returns the edge_high value or the default.
func (c *Config) GetEdgeHigh() float64 {
	if c.EdgeHigh == nil {
		return float64(defaults.EdgeHigh)
	}
	return *c.EdgeHigh
}

// GetApproxEpsilon returns the approx_epsilon value or the default.
func (c *Config) GetApproxEpsilon() float64 {
	if c.ApproxEpsilon == nil {
		return defaults.ApproxEpsilon
	}
	return *c.ApproxEpsilon
}

// GetMinLineGap returns the min_line_gap value or the default.
func (c *Config) GetMinLineGap() int {
	if c.MinLineGap == nil {
		return defaults.MinLineGap
	}
	return *c.MinLineGap
}

// GetAxisTolerance returns the axis_tolerance value or the default.
func (c *Config) GetAxisTolerance() int {
	if c.AxisTolerance == nil {
		return defaults.AxisTolerance
	}
	return *c.AxisTolerance
}

// GetHoughThreshold returns the hough_threshold value or the default.
func (c *Config) GetHoughThreshold() int {
	if c.HoughThreshold == nil {
		return defaults.HoughThreshold
	}
	return *c.HoughThreshold
}

// GetHoughMinLineLength returns the hough_min_line_length value or the default.
func (c *Config) GetHoughMinLineLength() float64 {
	if c.HoughMinLineLength == nil {
		return float64(defaults.HoughMinLineLength)
	}
	return *c.HoughMinLineLength
}

// GetHoughMaxLineGap returns the hough_max_line_gap value or the default.
func (c *Config) GetHoughMaxLineGap() float64 {
	if c.HoughMaxLineGap == nil {
		return float64(defaults.HoughMaxLineGap)
	}
	return *c.HoughMaxLineGap
}

// GetFallbackGridSize returns the fallback_grid_size value or the default.
func (c *Config) GetFallbackGridSize() int {
	if c.FallbackGridSize == nil {
		return defaults.FallbackGridSize
	}
	return *c.FallbackGridSize
}

// GetGridSize returns the grid_size value or the default.
func (c *Config) GetGridSize() int {
	if c.GridSize == nil {
		return defaults.GridSize
	}
	return *c.GridSize
}

// GetInsetMargin returns the inset_margin value or the default.
func (c *Config) GetInsetMargin() int {
	if c.InsetMargin == nil {
		return defaults.InsetMargin
	}
	return *c.InsetMargin
}

// GetK returns the k value or the default.
func (c *Config) GetK() int {
	if c.K == nil {
		return defaults.K
	}
	return *c.K
}

// GetAttempts returns the attempts value or the default.
func (c *Config) GetAttempts() int {
	if c.Attempts == nil {
		return defaults.Attempts
	}
	return *c.Attempts
}

// GetSeed returns the seed value or the default.
func (c *Config) GetSeed() int {
	if c.Seed == nil {
		return defaults.Seed
	}
	return *c.Seed
}
