// Package colorutil provides shared color utilities for the board reader.
package colorutil

import (
	"image/color"
	"math"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Palette is the set of region tints used when rendering a label grid.
// Labels beyond its length wrap around.
var Palette = []color.RGBA{
	{R: 0xff, G: 0x99, B: 0x99, A: 255},
	{R: 0xff, G: 0xcc, B: 0x99, A: 255},
	{R: 0xff, G: 0xff, B: 0x99, A: 255},
	{R: 0xcc, G: 0xff, B: 0x99, A: 255},
	{R: 0x99, G: 0xff, B: 0xcc, A: 255},
	{R: 0x99, G: 0xcc, B: 0xff, A: 255},
	{R: 0xcc, G: 0x99, B: 0xff, A: 255},
	{R: 0xff, G: 0x99, B: 0xcc, A: 255},
	{R: 0xf0, G: 0xf0, B: 0xf0, A: 255},
	{R: 0xd3, G: 0xd3, B: 0xd3, A: 255},
	{R: 0xc0, G: 0xc0, B: 0xc0, A: 255},
	{R: 0xa0, G: 0xa0, B: 0xa0, A: 255},
}

// PaletteColor returns the tint for a region label.
func PaletteColor(label int) color.RGBA {
	if label < 0 {
		label = -label
	}
	return Palette[label%len(Palette)]
}

// RGB is a color with float64 channels on the 0-255 scale, as produced by
// averaging many pixels.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Intensity returns the mean of the three channels.
func (c RGB) Intensity() float64 {
	return (c.R + c.G + c.B) / 3
}

// Less orders colors by intensity, then by R, G and B.
func (c RGB) Less(other RGB) bool {
	ci, oi := c.Intensity(), other.Intensity()
	if ci != oi {
		return ci < oi
	}
	if c.R != other.R {
		return c.R < other.R
	}
	if c.G != other.G {
		return c.G < other.G
	}
	return c.B < other.B
}

// ToRGBA converts to an opaque 8-bit color, rounding and clamping each channel.
func (c RGB) ToRGBA() color.RGBA {
	return color.RGBA{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: 255}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
