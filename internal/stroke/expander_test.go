package stroke

import (
	"math"
	"testing"

	"github.com/gogpu/carto"
)

func TestExpanderDefaults(t *testing.T) {
	e := NewExpander(carto.DefaultStroke())
	if e.tolerance != 0.25 {
		t.Errorf("tolerance = %v, want 0.25", e.tolerance)
	}
	if e.miterLimit != DefaultMiterLimit {
		t.Errorf("miterLimit = %v, want %v", e.miterLimit, DefaultMiterLimit)
	}

	e.SetTolerance(0.1)
	e.SetTolerance(-1)
	e.SetTolerance(0)
	if e.tolerance != 0.1 {
		t.Errorf("tolerance = %v, want 0.1", e.tolerance)
	}
	e.SetMiterLimit(0.5)
	if e.miterLimit != DefaultMiterLimit {
		t.Errorf("miterLimit = %v, want unchanged", e.miterLimit)
	}
}

func TestExpandHorizontalLine(t *testing.T) {
	tests := []struct {
		name   string
		cap    carto.LineCap
		bounds carto.Rect
		beyond bool // covers a point past the end
	}{
		{"butt", carto.CapButt, carto.Rect{MinX: 0, MinY: -1, MaxX: 10, MaxY: 1}, false},
		{"square", carto.CapSquare, carto.Rect{MinX: -1, MinY: -1, MaxX: 11, MaxY: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpander(carto.Stroke{Width: 2, Cap: tt.cap})
			out := e.Expand(carto.Polyline(carto.Pt(0, 0), carto.Pt(10, 0)))
			if b := out.Bounds(); !rectNear(b, tt.bounds, 1e-9) {
				t.Errorf("Bounds() = %+v, want %+v", b, tt.bounds)
			}
			if !out.Contains(carto.Pt(5, 0.5)) || out.Contains(carto.Pt(5, 1.5)) {
				t.Error("outline does not cover the stroke band")
			}
			if got := out.Contains(carto.Pt(10.5, 0)); got != tt.beyond {
				t.Errorf("Contains(10.5, 0) = %v, want %v", got, tt.beyond)
			}
		})
	}

	t.Run("round", func(t *testing.T) {
		out := NewExpander(carto.Stroke{Width: 2, Cap: carto.CapRound}).Expand(carto.Polyline(carto.Pt(0, 0), carto.Pt(10, 0)))
		if !out.Contains(carto.Pt(10.5, 0)) || !out.Contains(carto.Pt(-0.5, 0)) {
			t.Error("round caps do not extend past the ends")
		}
		if out.Contains(carto.Pt(10.9, 0.9)) {
			t.Error("round cap covers the square corner")
		}
	})
}

func TestExpandClosedSquare(t *testing.T) {
	e := NewExpander(carto.Stroke{Width: 2, Join: carto.JoinMiter})
	out := e.Expand(carto.Polygon(carto.Pt(0, 0), carto.Pt(10, 0), carto.Pt(10, 10), carto.Pt(0, 10)))

	rings := 0
	for range out.Subpaths() {
		rings++
	}
	if rings != 2 {
		t.Fatalf("rings = %d, want 2", rings)
	}
	tests := []struct {
		p    carto.Point
		want bool
	}{
		{carto.Pt(5, 0), true},
		{carto.Pt(10.5, 5), true},
		{carto.Pt(-0.9, -0.9), true}, // miter corner
		{carto.Pt(5, 5), false},
		{carto.Pt(5, 2), false},
		{carto.Pt(12, 5), false},
	}
	for _, tt := range tests {
		if got := out.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestExpandJoins(t *testing.T) {
	corner := carto.Pt(10, 0)
	tests := []struct {
		name string
		join carto.LineJoin
		// outer corner point beyond the bevel
		point carto.Point
		want  bool
	}{
		{"miter", carto.JoinMiter, carto.Pt(10.9, -0.9), true},
		{"bevel", carto.JoinBevel, carto.Pt(10.9, -0.9), false},
		{"round", carto.JoinRound, carto.Pt(10.6, -0.6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpander(carto.Stroke{Width: 2, Join: tt.join})
			out := e.Expand(carto.Polyline(carto.Pt(0, 0), corner, carto.Pt(10, 10)))
			if got := out.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestExpandDegenerate(t *testing.T) {
	if out := NewExpander(carto.Stroke{Width: 0}).Expand(carto.Polyline(carto.Pt(0, 0), carto.Pt(1, 0))); !out.IsEmpty() {
		t.Error("zero width stroke produced an outline")
	}
	if out := NewExpander(carto.Stroke{Width: 2}).Expand(nil); !out.IsEmpty() {
		t.Error("nil path produced an outline")
	}

	p := carto.NewPath()
	p.MoveTo(3, 3)
	p.LineTo(3, 3)
	if out := NewExpander(carto.Stroke{Width: 2}).Expand(p); !out.IsEmpty() {
		t.Error("butt-capped point produced an outline")
	}
	out := NewExpander(carto.Stroke{Width: 2, Cap: carto.CapRound}).Expand(p)
	if !out.Contains(carto.Pt(3, 3)) {
		t.Error("round-capped point does not cover its centre")
	}
	if math.Abs(out.Area()) < 2 {
		t.Errorf("round-capped point area = %v, want about pi", out.Area())
	}
}

func rectNear(a, b carto.Rect, eps float64) bool {
	return math.Abs(a.MinX-b.MinX) < eps && math.Abs(a.MinY-b.MinY) < eps &&
		math.Abs(a.MaxX-b.MaxX) < eps && math.Abs(a.MaxY-b.MaxY) < eps
}
