package surface

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/carto"
)

func TestBrailleSurfaceDots(t *testing.T) {
	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, 0x2801},
		{0, 1, 0x2802},
		{0, 2, 0x2804},
		{0, 3, 0x2840},
		{1, 0, 0x2808},
		{1, 1, 0x2810},
		{1, 2, 0x2820},
		{1, 3, 0x2880},
	}
	for _, tt := range tests {
		s := NewBrailleSurface(1, 1)
		s.Fill(carto.R(float64(tt.x), float64(tt.y), 1, 1))
		if got := []rune(s.Lines()[0])[0]; got != tt.want {
			t.Errorf("dot (%d, %d) = %U, want %U", tt.x, tt.y, got, tt.want)
		}
		if !s.Dot(tt.x, tt.y) {
			t.Errorf("Dot(%d, %d) = false, want true", tt.x, tt.y)
		}
	}
}

func TestBrailleSurfaceFill(t *testing.T) {
	s := NewBrailleSurface(4, 2)
	s.Fill(carto.R(0, 0, 8, 8))
	for _, line := range s.Lines() {
		if line != strings.Repeat("⣿", 4) {
			t.Errorf("line = %q, want full cells", line)
		}
	}

	s.Clear()
	s.SetClip(carto.R(0, 0, 4, 8))
	s.Fill(carto.R(0, 0, 8, 8))
	if got := s.Lines()[0]; got != "⣿⣿  " {
		t.Errorf("clipped line = %q", got)
	}
}

func TestBrailleSurfaceDraw(t *testing.T) {
	s := NewBrailleSurface(4, 1)
	s.SetTransform(carto.Translate(0, 0.5))
	s.Draw(carto.Polyline(carto.Pt(0, 0), carto.Pt(7, 0)))
	for x := range 8 {
		if !s.Dot(x, 0) {
			t.Errorf("Dot(%d, 0) = false, want true", x)
		}
		if s.Dot(x, 1) {
			t.Errorf("Dot(%d, 1) = true, want false", x)
		}
	}
}

func TestBrailleSurfaceDrawImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{A: 100})
	s := NewBrailleSurface(2, 1)
	s.DrawImage(img, carto.Scale(2, 2))
	if !s.Dot(0, 0) || !s.Dot(1, 1) {
		t.Error("opaque pixel not drawn")
	}
	if s.Dot(2, 2) || s.Dot(3, 3) {
		t.Error("translucent pixel drawn")
	}
}

func TestBrailleSurfaceGlyphs(t *testing.T) {
	s := NewBrailleSurface(6, 2)
	s.Fill(carto.R(0, 4, 12, 4))
	s.SetPaint(carto.Red)
	s.DrawGlyphs(&carto.GlyphRun{Text: "ERROR", Glyphs: []carto.Glyph{{ID: 1}}}, 2, 5)
	if got := s.Lines()[1]; got != "⣿ERROR" {
		t.Errorf("line = %q, want text over the dots", got)
	}
	if !strings.Contains(s.Render(), "ERROR") {
		t.Error("Render() lost the label")
	}
}
