package geometry

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/carto"
)

func pt(x, y float64) carto.Point { return carto.Point{X: x, Y: y} }

// gridLines returns n*n unit segments, one per cell of a grid with the
// given spacing.
func gridLines(n int, spacing float64) [][]carto.Point {
	var out [][]carto.Point
	for i := range n {
		for j := range n {
			x, y := float64(i)*spacing, float64(j)*spacing
			out = append(out, []carto.Point{pt(x, y), pt(x+1, y+1)})
		}
	}
	return out
}

func TestPolylines_Bounds(t *testing.T) {
	p := NewPolylines(carto.Geographic(), [][]carto.Point{
		{pt(0, 0), pt(10, 5)},
		{},
		{pt(-3, 2), pt(4, 8)},
	})
	if p.Parts() != 2 {
		t.Errorf("Parts() = %d, want 2", p.Parts())
	}
	want := carto.Rect{MinX: -3, MinY: 0, MaxX: 10, MaxY: 8}
	if got := p.BoundingBox(); got != want {
		t.Errorf("BoundingBox() = %+v, want %+v", got, want)
	}
	if p.Closed() {
		t.Error("NewPolylines() should be open")
	}
	if !NewPolygons(carto.Geographic(), nil).BoundingBox().IsEmpty() {
		t.Error("empty geometry should have empty bounds")
	}
}

func TestPolylines_Query(t *testing.T) {
	p := NewPolylines(carto.Geographic(), gridLines(10, 10))
	tests := []struct {
		name string
		r    carto.Rect
		want []int
	}{
		{"single cell", carto.R(19.5, 29.5, 1, 1), []int{23}},
		{"two cells", carto.R(0, 0, 10.5, 0.5), []int{0, 10}},
		{"outside", carto.R(500, 500, 10, 10), nil},
		{"empty", carto.EmptyRect(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Query(tt.r)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Query(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestPolylines_ClipLines(t *testing.T) {
	p := NewPolylines(carto.Geographic(), [][]carto.Point{
		{pt(0, 5), pt(20, 5)},
		{pt(0, 0), pt(0, 1)},
	})
	g, err := p.Clip(carto.R(5, 0, 5, 10), carto.Geographic())
	if err != nil {
		t.Fatal(err)
	}
	c := g.(*Polylines)
	if c.Parts() != 1 {
		t.Fatalf("Parts() = %d, want 1", c.Parts())
	}
	want := []carto.Point{pt(5, 5), pt(10, 5)}
	if got := c.Part(0); !slices.Equal(got, want) {
		t.Errorf("Part(0) = %v, want %v", got, want)
	}
}

func TestPolylines_ClipLineReentering(t *testing.T) {
	p := NewPolylines(carto.Geographic(), [][]carto.Point{
		{pt(1, 1), pt(20, 1), pt(20, 2), pt(1, 2)},
	})
	g, err := p.Clip(carto.R(0, 0, 10, 10), carto.Geographic())
	if err != nil {
		t.Fatal(err)
	}
	if n := g.(*Polylines).Parts(); n != 2 {
		t.Errorf("Parts() = %d, want 2", n)
	}
}

func TestPolylines_ClipPolygons(t *testing.T) {
	square := []carto.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	p := NewPolygons(carto.Geographic(), [][]carto.Point{square})
	g, err := p.Clip(carto.R(5, 5, 10, 10), carto.Geographic())
	if err != nil {
		t.Fatal(err)
	}
	c := g.(*Polylines)
	if !c.Closed() {
		t.Error("clipped polygons should stay closed")
	}
	want := carto.Rect{MinX: 5, MinY: 5, MaxX: 10, MaxY: 10}
	if got := c.BoundingBox(); got != want {
		t.Errorf("BoundingBox() = %+v, want %+v", got, want)
	}
}

func TestPolylines_ClipTrivial(t *testing.T) {
	p := NewPolylines(carto.Geographic(), [][]carto.Point{{pt(0, 0), pt(10, 10)}})
	p.SetRenderingResolution(0.5)

	g, err := p.Clip(carto.R(-1, -1, 20, 20), carto.Geographic())
	if err != nil || g != Geometry(p) {
		t.Errorf("Clip(containing) = %v, %v, want the geometry itself", g, err)
	}
	g, err = p.Clip(carto.R(50, 50, 1, 1), carto.Geographic())
	if err != nil || g != nil {
		t.Errorf("Clip(outside) = %v, %v, want nil, nil", g, err)
	}
	g, err = p.Clip(carto.R(2, 2, 2, 2), carto.Geographic())
	if err != nil {
		t.Fatal(err)
	}
	if g.Resolution() != 0.5 {
		t.Errorf("clipped Resolution() = %v, want 0.5", g.Resolution())
	}
}

func TestPolylines_ClipOtherSystem(t *testing.T) {
	p := NewPolylines(carto.Geographic(), [][]carto.Point{{pt(0, 0), pt(10, 10)}})
	_, err := p.Clip(carto.R(2, 2, 2, 2), carto.Device())
	if !errors.Is(err, carto.ErrNoTransformPath) {
		t.Errorf("Clip() error = %v, want ErrNoTransformPath", err)
	}
}

func TestPolylines_SetCoordinateSystem(t *testing.T) {
	projected := carto.NewCoordinateSystem("scaled", "TEST:2", carto.UnitsMetres)
	reg := carto.NewRegistry()
	reg.RegisterAffine(carto.Geographic(), projected, carto.Scale(2, 3))

	p := NewPolylines(carto.Geographic(), [][]carto.Point{{pt(1, 1), pt(2, 2)}})
	if err := p.SetCoordinateSystem(projected, reg); err != nil {
		t.Fatal(err)
	}
	if !carto.Equivalent(p.CoordinateSystem(), projected) {
		t.Errorf("CoordinateSystem() = %v, want %v", p.CoordinateSystem(), projected)
	}
	want := carto.Rect{MinX: 2, MinY: 3, MaxX: 4, MaxY: 6}
	if got := p.BoundingBox(); got != want {
		t.Errorf("BoundingBox() = %+v, want %+v", got, want)
	}

	other := carto.NewCoordinateSystem("other", "TEST:3", carto.UnitsMetres)
	var tce *carto.TransformCreationError
	if err := p.SetCoordinateSystem(other, reg); !errors.As(err, &tce) {
		t.Errorf("SetCoordinateSystem(unreachable) error = %v, want *TransformCreationError", err)
	}
}

func TestPolylines_ShapeRule(t *testing.T) {
	outer := []carto.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	inner := []carto.Point{pt(3, 3), pt(7, 3), pt(7, 7), pt(3, 7)}
	p := NewPolygons(carto.Geographic(), [][]carto.Point{outer, inner})
	s := p.Shape()
	if s.Contains(pt(5, 5)) {
		t.Error("hole should not be inside")
	}
	if !s.Contains(pt(1, 1)) {
		t.Error("ring body should be inside")
	}
	if p.Shape() != s {
		t.Error("Shape() should be cached while the resolution is unchanged")
	}
	p.SetRenderingResolution(1)
	if p.Shape() == s {
		t.Error("SetRenderingResolution() should rebuild the shape")
	}
}

func TestDecimate(t *testing.T) {
	line := []carto.Point{pt(0, 0), pt(0.2, 0.1), pt(0.4, 0), pt(1.5, 0), pt(1.6, 0.1)}
	tests := []struct {
		name   string
		pts    []carto.Point
		res    float64
		closed bool
		want   int
	}{
		{"zero resolution", line, 0, false, 5},
		{"coarse", line, 1, false, 3},
		{"very coarse keeps ends", line, 100, false, 2},
		{"two points", line[:2], 100, false, 2},
		{"ring keeps original", []carto.Point{pt(0, 0), pt(0.1, 0), pt(0.1, 0.1), pt(0, 0.1)}, 1, true, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decimate(tt.pts, tt.res, tt.closed)
			if len(got) != tt.want {
				t.Errorf("decimate(res=%v) = %v, want %d points", tt.res, got, tt.want)
			}
			if got[0] != tt.pts[0] || got[len(got)-1] != tt.pts[len(tt.pts)-1] {
				t.Errorf("decimate(res=%v) = %v, want ends kept", tt.res, got)
			}
		})
	}
}

func TestPolylines_VertexCount(t *testing.T) {
	var line []carto.Point
	for i := range 101 {
		line = append(line, pt(float64(i)*0.1, 0))
	}
	p := NewPolylines(carto.Geographic(), [][]carto.Point{line})
	if n := p.VertexCount(); n != 101 {
		t.Errorf("VertexCount() = %d, want 101", n)
	}
	p.SetRenderingResolution(1)
	if n := p.VertexCount(); n > 12 || n < 10 {
		t.Errorf("VertexCount() at resolution 1 = %d, want about 11", n)
	}
}
