package carto

import (
	"fmt"
	"image/color"
	"math"
)

// Color is a non-premultiplied colour with components in [0, 1].
// It implements color.Color.
type Color struct {
	R, G, B, A float64
}

var _ color.Color = Color{}

// RGBA implements color.Color, returning alpha-premultiplied 16-bit values.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(clampUnit(c.A) * 0xffff)
	r = uint32(clampUnit(c.R) * clampUnit(c.A) * 0xffff)
	g = uint32(clampUnit(c.G) * clampUnit(c.A) * 0xffff)
	b = uint32(clampUnit(c.B) * clampUnit(c.A) * 0xffff)
	return r, g, b, a
}

// ColorOf converts any color.Color to a Color.
func ColorOf(c color.Color) Color {
	if v, ok := c.(Color); ok {
		return v
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float64(n.R) / 0xffff,
		G: float64(n.G) / 0xffff,
		B: float64(n.B) / 0xffff,
		A: float64(n.A) / 0xffff,
	}
}

// RGB creates an opaque colour.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Lerp interpolates linearly between c and other.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// HexString formats the colour as "#rrggbb", ignoring alpha.
func (c Color) HexString() string {
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(math.Round(clampUnit(c.R)*255)),
		uint8(math.Round(clampUnit(c.G)*255)),
		uint8(math.Round(clampUnit(c.B)*255)))
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'. Malformed input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}
	var v [4]uint32
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			d, ok := hexDigit(hex[i])
			if !ok {
				return RGB(0, 0, 0)
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return RGB(0, 0, 0)
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return RGB(0, 0, 0)
	}
	return Color{
		R: float64(v[0]) / 255,
		G: float64(v[1]) / 255,
		B: float64(v[2]) / 255,
		A: float64(v[3]) / 255,
	}
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

// HSL creates a colour from hue in degrees, saturation and lightness in [0, 1].
func HSL(h, s, l float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB(r+m, g+m, b+m)
}

func clampUnit(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Common colours.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Transparent = Color{}
)
