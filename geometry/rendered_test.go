package geometry

import (
	"image/color"
	"math"
	"slices"
	"testing"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/surface"
)

func paintOnce(t *testing.T, r *carto.Renderer) *surface.Recorder {
	t.Helper()
	rec := surface.NewRecorder(100, 100)
	if err := r.Paint(rec, nil); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	return rec
}

func TestRenderedGeometries_Paint(t *testing.T) {
	r := carto.NewRenderer(carto.Geographic())
	g := NewPolylines(carto.Geographic(), [][]carto.Point{{pt(10, 10), pt(50, 10), pt(50, 40)}})
	l := NewRenderedGeometries("roads", g)
	if err := r.Add(l); err != nil {
		t.Fatal(err)
	}
	rec := paintOnce(t, r)

	if n := rec.Count(surface.OpDraw); n != 1 {
		t.Fatalf("Count(OpDraw) = %d, want 1", n)
	}
	if n := rec.Count(surface.OpFill); n != 0 {
		t.Errorf("Count(OpFill) = %d, want 0", n)
	}
	op := rec.Ops()[0]
	if op.Stroke.Width != 1 {
		t.Errorf("stroke width = %v, want 1", op.Stroke.Width)
	}
	want := carto.Rect{MinX: 10, MinY: 10, MaxX: 50, MaxY: 40}
	if got := op.Shape.Bounds(); !rectNear(got, want, 1e-9) {
		t.Errorf("drawn bounds = %+v, want %+v", got, want)
	}
	area := l.PaintedArea()
	if area == nil {
		t.Fatal("PaintedArea() = nil after paint")
	}
	want = carto.Rect{MinX: 9.5, MinY: 9.5, MaxX: 50.5, MaxY: 40.5}
	if got := area.Bounds(); !rectNear(got, want, 1e-9) {
		t.Errorf("PaintedArea().Bounds() = %+v, want %+v", got, want)
	}
}

func TestRenderedGeometries_FillBeforeStroke(t *testing.T) {
	styles := carto.StyleFunc(func(p carto.Primitive, key any) carto.Style {
		if key != "lakes" {
			t.Errorf("style key = %v, want lakes", key)
		}
		return carto.Style{Fill: carto.Hex("#8ab"), Stroke: carto.Black, Width: 2}
	})
	r := carto.NewRenderer(carto.Geographic(), carto.WithStyles(styles))
	g := NewPolygons(carto.Geographic(), [][]carto.Point{{pt(10, 10), pt(30, 10), pt(30, 30), pt(10, 30)}})
	l := NewRenderedGeometries("water", g, WithFill(true), WithStyleKey("lakes"))
	_ = r.Add(l)
	rec := paintOnce(t, r)

	var kinds []surface.OpKind
	for _, op := range rec.Ops() {
		kinds = append(kinds, op.Kind)
	}
	if want := []surface.OpKind{surface.OpFill, surface.OpDraw}; !slices.Equal(kinds, want) {
		t.Errorf("ops = %v, want %v", kinds, want)
	}
}

func TestRenderedGeometries_UnknownUnitsPlaceholder(t *testing.T) {
	sheet := carto.NewCoordinateSystem("sheet", "", carto.UnitsUnknown)
	r := carto.NewRenderer(carto.Geographic())
	l := NewRenderedGeometries("scan", NewPolylines(sheet, [][]carto.Point{{pt(0, 0), pt(5, 5)}}))
	_ = r.Add(l)
	rec := paintOnce(t, r)

	// Outline and both diagonals.
	if n := rec.Count(surface.OpDraw); n != 3 {
		t.Errorf("Count(OpDraw) = %d, want 3", n)
	}
	for _, op := range rec.Ops() {
		if op.Paint != color.Color(carto.Red) {
			t.Errorf("placeholder paint = %v, want red", op.Paint)
		}
	}
	if l.PaintedArea() == nil {
		t.Error("placeholder should declare its painted area")
	}
}

func TestRenderedGeometries_DecimationFollowsZoom(t *testing.T) {
	r := carto.NewRenderer(carto.Geographic(), carto.WithResolution(2))
	g := NewPolylines(carto.Geographic(), gridLines(100, 10))
	l := NewRenderedGeometries("grid", g)
	_ = r.Add(l)

	r.SetZoom(carto.Scale(0.1, 0.1))
	paintOnce(t, r)
	// One pixel is 10 degrees; the whole grid is visible.
	if got := g.Resolution(); math.Abs(got-20) > 1e-9 {
		t.Errorf("Resolution() = %v, want 20", got)
	}
	if c := l.ClipCache().Clips(); c != 0 {
		t.Errorf("Clips() = %d, want 0", c)
	}

	r.SetZoom(carto.Scale(10, 10))
	paintOnce(t, r)
	if c := l.ClipCache().Clips(); c != 1 {
		t.Errorf("Clips() after zoom in = %d, want 1", c)
	}
	sub := l.ClipCache().Entries()[0].Geometry
	if got := sub.Resolution(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("subset Resolution() = %v, want 0.2", got)
	}
}

func TestRenderedGeometries_NonAffineProjection(t *testing.T) {
	km := carto.NewCoordinateSystem("km grid", "TEST:9", carto.UnitsMetres)
	reg := carto.NewRegistry()
	reg.RegisterFunc(km, carto.Geographic(),
		func(p carto.Point) (carto.Point, error) { return carto.Point{X: p.X / 1000, Y: p.Y / 1000}, nil },
		func(p carto.Point) (carto.Point, error) { return carto.Point{X: p.X * 1000, Y: p.Y * 1000}, nil },
	)
	r := carto.NewRenderer(carto.Geographic(), carto.WithTransformFactory(reg))
	g := NewPolylines(km, [][]carto.Point{{pt(10000, 10000), pt(50000, 40000)}})
	l := NewRenderedGeometries("pipeline", g)
	_ = r.Add(l)
	rec := paintOnce(t, r)

	if n := rec.Count(surface.OpDraw); n != 1 {
		t.Fatalf("Count(OpDraw) = %d, want 1", n)
	}
	want := carto.Rect{MinX: 10, MinY: 10, MaxX: 50, MaxY: 40}
	if got := rec.Ops()[0].Shape.Bounds(); !rectNear(got, want, 1e-6) {
		t.Errorf("drawn bounds = %+v, want %+v", got, want)
	}
}

func TestRenderedGeometries_SetGeometry(t *testing.T) {
	r := carto.NewRenderer(carto.Geographic())
	l := NewRenderedGeometries("roads", NewPolylines(carto.Geographic(), gridLines(100, 10)))
	_ = r.Add(l)
	r.SetZoom(carto.Scale(10, 10))
	paintOnce(t, r)
	for r.Queue().Pending() {
		r.Queue().Take()
	}

	var events []string
	l.Subscribe(func(e carto.Event) { events = append(events, e.Property) })
	next := NewPolylines(carto.Geographic(), [][]carto.Point{{pt(1, 1), pt(2, 2)}})
	l.SetGeometry(next)

	if l.Geometry() != Geometry(next) {
		t.Error("Geometry() did not return the new geometry")
	}
	if l.ClipCache().Len() != 0 {
		t.Errorf("ClipCache().Len() = %d, want 0", l.ClipCache().Len())
	}
	if l.PaintedArea() != nil {
		t.Error("SetGeometry() should forget the painted area")
	}
	if !slices.Contains(events, carto.PropertyData) {
		t.Errorf("events = %v, want %q", events, carto.PropertyData)
	}
	if _, ok := r.Queue().Take(); !ok {
		t.Error("SetGeometry() did not request a repaint")
	}
}

func TestAdjustResolution(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		changed bool
		want    float64
	}{
		{"inside window", 2.9, 2, false, 2.9},
		{"at lower edge", 1, 2, false, 1},
		{"too coarse", 3.1, 2, true, 2},
		{"too fine", 0.5, 2, true, 2},
		{"unset", 0, 2, true, 2},
		{"zero target", 0, 0, false, 0},
		{"NaN target", 1, math.NaN(), true, 0},
		{"negative target", 1, -3, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewPolylines(carto.Geographic(), nil)
			g.SetRenderingResolution(tt.current)
			if got := AdjustResolution(g, tt.target); got != tt.changed {
				t.Errorf("AdjustResolution() = %v, want %v", got, tt.changed)
			}
			if got := g.Resolution(); got != tt.want {
				t.Errorf("Resolution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolutionWindow(t *testing.T) {
	lo, hi := ResolutionWindow(4)
	if lo != 2 || hi != 6 {
		t.Errorf("ResolutionWindow(4) = %v, %v, want 2, 6", lo, hi)
	}
}

func TestRenderedGeometries_PartialPaintKeepsArea(t *testing.T) {
	r := carto.NewRenderer(carto.Geographic())
	l := NewRenderedGeometries("diagonal", NewPolylines(carto.Geographic(), [][]carto.Point{{pt(0, 0), pt(100, 100)}}))
	_ = r.Add(l)
	rec := paintOnce(t, r)
	full := l.PaintedArea().Bounds()

	near := carto.R(5, 5, 5, 5)
	if err := r.Paint(rec, &near); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	if got := l.PaintedArea().Bounds(); !rectNear(got, full, 1e-9) {
		t.Errorf("PaintedArea().Bounds() after partial paint = %+v, want %+v", got, full)
	}

	rec.Reset()
	far := carto.R(85, 85, 5, 5)
	if err := r.Paint(rec, &far); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	if st := r.Stats(); st.Painted != 1 || st.Skipped != 0 {
		t.Errorf("Stats() = %+v, want the layer painted", st)
	}
	if n := rec.Count(surface.OpDraw); n != 1 {
		t.Errorf("Count(OpDraw) = %d, want 1", n)
	}
}

func TestRenderedGeometries_DisposeClearsCache(t *testing.T) {
	r := carto.NewRenderer(carto.Geographic())
	l := NewRenderedGeometries("roads", NewPolylines(carto.Geographic(), gridLines(100, 10)))
	_ = r.Add(l)
	r.SetZoom(carto.Scale(10, 10))
	paintOnce(t, r)
	if l.ClipCache().Len() == 0 {
		t.Fatal("ClipCache().Len() = 0 after a zoomed paint, want an entry")
	}

	l.Dispose()
	if n := l.ClipCache().Len(); n != 0 {
		t.Errorf("ClipCache().Len() after Dispose() = %d, want 0", n)
	}
	if !l.Disposed() {
		t.Error("Disposed() = false after Dispose()")
	}
}
