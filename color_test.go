package carto

import (
	"image/color"
	"math"
	"testing"
)

func TestColor_RGBA(t *testing.T) {
	tests := []struct {
		name                       string
		c                          Color
		wantR, wantG, wantB, wantA uint32
	}{
		{"opaque black", Black, 0, 0, 0, 0xffff},
		{"opaque white", White, 0xffff, 0xffff, 0xffff, 0xffff},
		{"transparent", Transparent, 0, 0, 0, 0},
		{"50% alpha red", Color{R: 1, A: 0.5}, 0x7fff, 0, 0, 0x7fff},
		{"out of range clamps", Color{R: 2, G: -1, A: 1}, 0xffff, 0, 0, 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if diff(r, tt.wantR) > 1 || diff(g, tt.wantG) > 1 || diff(b, tt.wantB) > 1 || diff(a, tt.wantA) > 1 {
				t.Errorf("RGBA() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", RGB(1, 1, 1)},
		{"000", RGB(0, 0, 0)},
		{"#ff0000", RGB(1, 0, 0)},
		{"00ff0080", Color{G: 1, A: 128.0 / 255}},
		{"f00f", RGB(1, 0, 0)},
		{"zzz", RGB(0, 0, 0)},
		{"12345", RGB(0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Hex(tt.in)
			if !colorNear(got, tt.want) {
				t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    Color
	}{
		{0, 1, 0.5, RGB(1, 0, 0)},
		{120, 1, 0.5, RGB(0, 1, 0)},
		{240, 1, 0.5, RGB(0, 0, 1)},
		{-120, 1, 0.5, RGB(0, 0, 1)},
		{0, 0, 1, RGB(1, 1, 1)},
	}
	for _, tt := range tests {
		got := HSL(tt.h, tt.s, tt.l)
		if !colorNear(got, tt.want) {
			t.Errorf("HSL(%v, %v, %v) = %+v, want %+v", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}

func TestColorOf(t *testing.T) {
	got := ColorOf(color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if !colorNear(got, Red) {
		t.Errorf("ColorOf(red) = %+v, want %+v", got, Red)
	}
	c := Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8}
	if got := ColorOf(c); got != c {
		t.Errorf("ColorOf(Color) = %+v, want identity", got)
	}
}

func colorNear(a, b Color) bool {
	const eps = 1e-3
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}

func TestColor_HexString(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Black, "#000000"},
		{White, "#ffffff"},
		{Hex("#1f4e79"), "#1f4e79"},
		{RGB(2, -1, 0.5), "#ff0080"},
	}
	for _, tt := range tests {
		if got := tt.c.HexString(); got != tt.want {
			t.Errorf("%+v.HexString() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
