package carto

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"
	"slices"
	"testing"
)

// fakeSurface records the calls made by a pass.
type fakeSurface struct {
	bounds Rect
	m      Affine
	clip   Rect
	ops    []string
	fills  []Rect // device bounds of filled shapes
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{bounds: R(0, 0, w, h), m: Identity(), clip: R(0, 0, w, h)}
}

func (s *fakeSurface) Bounds() Rect          { return s.bounds }
func (s *fakeSurface) Transform() Affine     { return s.m }
func (s *fakeSurface) SetTransform(m Affine) { s.m = m }
func (s *fakeSurface) ClipBounds() Rect      { return s.clip }
func (s *fakeSurface) SetClip(r Rect)        { s.clip = r }
func (s *fakeSurface) SetPaint(color.Color)  {}
func (s *fakeSurface) SetStroke(Stroke)      {}
func (s *fakeSurface) DrawImage(image.Image, Affine) {
	s.ops = append(s.ops, "image")
}

func (s *fakeSurface) Fill(sh Shape) {
	s.ops = append(s.ops, "fill")
	s.fills = append(s.fills, s.m.TransformRect(sh.Bounds()))
}

func (s *fakeSurface) Draw(Shape) { s.ops = append(s.ops, "draw") }

func (s *fakeSurface) DrawGlyphs(run *GlyphRun, x, y float64) {
	s.ops = append(s.ops, "glyphs:"+run.Text)
}

// testLayer paints a rectangle in its coordinate system and records each
// paint in a shared log.
type testLayer struct {
	*BaseLayer
	log     *[]string
	rect    Rect
	declare bool
	err     error
	paints  int
}

func newTestLayer(name string, z float64, log *[]string) *testLayer {
	l := &testLayer{BaseLayer: NewBaseLayer(name, Geographic()), log: log, rect: R(0, 0, 10, 10), declare: true}
	l.SetZOrder(z)
	return l
}

func (l *testLayer) Paint(rc *RenderingContext) error {
	l.paints++
	if l.log != nil {
		*l.log = append(*l.log, l.Name())
	}
	if l.err != nil {
		return l.err
	}
	if err := rc.SetCoordinateSystem(l.CoordinateSystem()); err != nil {
		return err
	}
	rc.Surface().Fill(l.rect)
	if l.declare {
		return rc.AddPaintedArea(l.rect, l.CoordinateSystem())
	}
	return nil
}

func TestRenderer_PaintOrder(t *testing.T) {
	var log []string
	r := NewRenderer(Geographic())
	zs := map[string]float64{"top": math.Inf(1), "mid": 5, "low": -2, "bottom": math.Inf(-1), "mid2": 5}
	for _, name := range []string{"top", "mid", "low", "bottom", "mid2"} {
		if err := r.Add(newTestLayer(name, zs[name], &log)); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Paint(newFakeSurface(100, 100), nil); err != nil {
		t.Fatal(err)
	}
	want := []string{"bottom", "low", "mid", "mid2", "top"}
	if !slices.Equal(log, want) {
		t.Errorf("paint order = %v, want %v", log, want)
	}
}

func TestRenderer_ZOrderChangeResorts(t *testing.T) {
	var log []string
	r := NewRenderer(Geographic())
	a := newTestLayer("a", 1, &log)
	b := newTestLayer("b", 2, &log)
	_ = r.Add(a)
	_ = r.Add(b)
	a.SetZOrder(3)
	_ = r.Paint(newFakeSurface(10, 10), nil)
	if want := []string{"b", "a"}; !slices.Equal(log, want) {
		t.Errorf("paint order = %v, want %v", log, want)
	}
}

func TestBaseLayer_NaNZOrderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("SetZOrder(NaN) did not panic")
		}
	}()
	NewBaseLayer("l", Geographic()).SetZOrder(math.NaN())
}

func TestRenderer_SetResolution(t *testing.T) {
	tests := []struct {
		res     float64
		wantErr bool
	}{
		{0, false},
		{0.5, false},
		{-1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}
	for _, tt := range tests {
		r := NewRenderer(Geographic())
		err := r.SetResolution(tt.res)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetResolution(%v) error = %v, wantErr %v", tt.res, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("SetResolution(%v) error = %v, want ErrInvalidResolution", tt.res, err)
		}
		if !tt.wantErr && r.Resolution() != tt.res {
			t.Errorf("Resolution() = %v, want %v", r.Resolution(), tt.res)
		}
	}
}

func TestRenderer_AddMakesVisible(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	if l.Visible() {
		t.Fatal("detached layer should start hidden")
	}
	_ = r.Add(l)
	if !l.Visible() {
		t.Error("Add() did not make the layer visible")
	}
	if _, ok := r.Queue().Take(); !ok {
		t.Error("Add() did not request a repaint")
	}
	if err := r.Add(l); !errors.Is(err, ErrLayerAttached) {
		t.Errorf("second Add() error = %v, want ErrLayerAttached", err)
	}
}

func TestRenderer_RemoveHidesAndRepaints(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	_ = r.Paint(newFakeSurface(100, 100), nil)
	r.Queue().Take()

	if err := r.Remove(l); err != nil {
		t.Fatal(err)
	}
	if l.Visible() || l.Renderer() != nil {
		t.Error("removed layer should be hidden and detached")
	}
	area, ok := r.Queue().Take()
	if !ok || area == nil {
		t.Fatalf("Remove() repaint = %v, %v, want the painted area", area, ok)
	}
	if want := R(0, 0, 10, 10); area.Bounds() != want {
		t.Errorf("repaint area = %+v, want %+v", area.Bounds(), want)
	}
	if err := r.Remove(l); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("second Remove() error = %v, want ErrLayerNotFound", err)
	}
}

func TestUpdate_NilPaintedAreaAlwaysPaints(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	l.declare = false
	_ = r.Add(l)
	far := R(500, 500, 10, 10)
	for i := range 3 {
		if err := r.Paint(newFakeSurface(1000, 1000), &far); err != nil {
			t.Fatal(err)
		}
		if l.paints != i+1 {
			t.Fatalf("pass %d: paints = %d, want %d", i, l.paints, i+1)
		}
		if l.PaintedArea() != nil {
			t.Errorf("pass %d: PaintedArea() = %v, want nil for a layer declaring nothing", i, l.PaintedArea())
		}
	}
}

func TestUpdate_SkipsOutsideClip(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	s := newFakeSurface(100, 100)
	_ = r.Paint(s, nil)
	if l.PaintedArea() == nil {
		t.Fatal("PaintedArea() = nil after declaring an area")
	}

	far := R(50, 50, 10, 10)
	_ = r.Paint(s, &far)
	if l.paints != 1 {
		t.Errorf("paints = %d, want 1: clip does not touch the painted area", l.paints)
	}
	if st := r.Stats(); st.Skipped != 1 || st.Painted != 0 || st.Passes != 2 {
		t.Errorf("Stats() = %+v, want one skipped layer after two passes", st)
	}

	near := R(5, 5, 10, 10)
	_ = r.Paint(s, &near)
	if l.paints != 2 {
		t.Errorf("paints = %d, want 2: clip touches the painted area", l.paints)
	}
}

func TestUpdate_PaintFailureKeepsPaintedArea(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	s := newFakeSurface(100, 100)
	_ = r.Paint(s, nil)
	before := l.PaintedArea()

	l.err = errors.New("disk on fire")
	l.rect = R(20, 20, 30, 30)
	err := r.Paint(s, nil)
	if !errors.Is(err, l.err) {
		t.Fatalf("Paint() error = %v, want the layer error", err)
	}
	if l.PaintedArea() != before {
		t.Error("failed paint replaced the painted area")
	}
	if st := r.Stats(); st.Failed != 1 {
		t.Errorf("Stats().Failed = %d, want 1", st.Failed)
	}
}

func TestUpdate_TransformFailurePropagates(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	l.SetCoordinateSystem(testOrphan)
	_ = r.Add(l)
	err := r.Paint(newFakeSurface(10, 10), nil)
	var tce *TransformCreationError
	if !errors.As(err, &tce) {
		t.Errorf("Paint() error = %v, want *TransformCreationError", err)
	}
}

func TestZoomChanged_NilResetsPaintedArea(t *testing.T) {
	r := NewRenderer(Geographic())
	var layers []*testLayer
	for i := range 3 {
		l := newTestLayer("l", float64(i), nil)
		layers = append(layers, l)
		_ = r.Add(l)
	}
	_ = r.Paint(newFakeSurface(100, 100), nil)
	for _, l := range layers {
		if l.PaintedArea() == nil {
			t.Fatal("precondition: painted area should be known")
		}
	}
	r.ZoomChanged(nil)
	for i, l := range layers {
		if l.PaintedArea() != nil {
			t.Errorf("layer %d PaintedArea() = %v after ZoomChanged(nil), want nil", i, l.PaintedArea())
		}
	}
}

func TestZoomChanged_ExposesStrip(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	_ = r.Paint(newFakeSurface(100, 100), nil)

	pan := Translate(20, 0)
	r.ZoomChanged(&pan)

	area := l.PaintedArea()
	if area == nil {
		t.Fatal("PaintedArea() = nil after a pan")
	}
	// Content moved right by 20.
	if !area.Contains(Pt(25, 5)) {
		t.Error("moved painted content not covered")
	}
	// The strip uncovered on the left must be repainted.
	if !area.IntersectsRect(R(2, 50, 5, 5)) {
		t.Error("newly exposed strip not covered")
	}
	// Old, untouched, still covered content is not dirty.
	if area.IntersectsRect(R(60, 60, 5, 5)) {
		t.Error("unexposed region reported as painted")
	}
	if got := r.Zoom(); !affineNear(got, pan) {
		t.Errorf("Zoom() = %+v, want %+v", got, pan)
	}
}

func TestSetZoom_ReportsDelta(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	_ = r.Paint(newFakeSurface(100, 100), nil)
	r.SetZoom(Translate(30, 0))
	area := l.PaintedArea()
	if area == nil || !area.Contains(Pt(35, 5)) {
		t.Errorf("SetZoom() did not move the painted area: %v", area)
	}
}

type countingFactory struct {
	reg   *Registry
	calls int
}

func (f *countingFactory) CreateTransform(src, dst *CoordinateSystem) (Transform, error) {
	f.calls++
	return f.reg.CreateTransform(src, dst)
}

func TestRenderer_CommonestTransformCache(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterAffine(testUTM, Geographic(), Scale(1e-5, 1e-5))
	reg.RegisterAffine(testLocal, Geographic(), Identity())
	f := &countingFactory{reg: reg}
	r := NewRenderer(Geographic(), WithTransformFactory(f))

	for range 3 {
		if _, err := r.Transform(testUTM, Geographic()); err != nil {
			t.Fatal(err)
		}
	}
	if f.calls != 1 {
		t.Errorf("factory calls = %d, want 1", f.calls)
	}
	same := NewCoordinateSystem("another UTM name", "EPSG:32633", UnitsMetres)
	if _, err := r.Transform(same, Geographic()); err != nil || f.calls != 1 {
		t.Errorf("equivalent source missed the cache: calls = %d, err = %v", f.calls, err)
	}
	_, _ = r.Transform(testLocal, Geographic())
	_, _ = r.Transform(testUTM, Geographic())
	if f.calls != 3 {
		t.Errorf("factory calls = %d, want 3 after the cache was replaced", f.calls)
	}
	if _, err := r.Transform(Geographic(), Geographic()); err != nil || f.calls != 3 {
		t.Error("equivalent systems should not reach the factory")
	}
}

func TestRenderer_TransformCreationFailure(t *testing.T) {
	r := NewRenderer(Geographic())
	_, err := r.Transform(testOrphan, Geographic())
	var tce *TransformCreationError
	if !errors.As(err, &tce) {
		t.Errorf("Transform() error = %v, want *TransformCreationError", err)
	}
}

type plainErrorFactory struct{}

func (plainErrorFactory) CreateTransform(src, dst *CoordinateSystem) (Transform, error) {
	return nil, errors.New("unsupported datum")
}

func TestRenderer_WrapsFactoryErrors(t *testing.T) {
	r := NewRenderer(Geographic(), WithTransformFactory(plainErrorFactory{}))
	_, err := r.Transform(testUTM, Geographic())
	var tce *TransformCreationError
	if !errors.As(err, &tce) {
		t.Errorf("Transform() error = %v, want *TransformCreationError", err)
	}
}

type preparedLayer struct {
	*testLayer
	prepared bool
}

func (l *preparedLayer) Prepare(ctx context.Context) error {
	l.prepared = true
	return ctx.Err()
}

func (l *preparedLayer) Paint(rc *RenderingContext) error {
	if !rc.IsPrinting() {
		return errors.New("not printing")
	}
	if !l.prepared {
		return errors.New("painted before Prepare")
	}
	return l.testLayer.Paint(rc)
}

func TestRenderer_Print(t *testing.T) {
	r := NewRenderer(Geographic())
	l := &preparedLayer{testLayer: newTestLayer("p", 0, nil)}
	_ = r.Add(l)
	s := newFakeSurface(300, 300)
	if err := r.Print(context.Background(), s, Scale(3, 3)); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if len(s.fills) != 1 || s.fills[0] != R(0, 0, 30, 30) {
		t.Errorf("printed fills = %v, want one 30x30 rectangle", s.fills)
	}
	if l.PaintedArea() != nil {
		t.Error("a printing pass must not replace the painted area")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Print(ctx, s, Scale(3, 3)); !errors.Is(err, context.Canceled) {
		t.Errorf("Print() with cancelled context error = %v", err)
	}
}

type toolLayer struct {
	*testLayer
	text    string
	consume bool
}

func (l *toolLayer) Tooltip(p Point) (string, bool) {
	if l.text == "" || !l.rect.ContainsPoint(p) {
		return "", false
	}
	return l.text, true
}

func (l *toolLayer) Consume(p Point) bool { return l.consume && l.rect.ContainsPoint(p) }

func TestRenderer_Tooltip(t *testing.T) {
	r := NewRenderer(Geographic())
	low := &toolLayer{testLayer: newTestLayer("low", 0, nil), text: "low"}
	high := &toolLayer{testLayer: newTestLayer("high", 1, nil), text: "high"}
	_ = r.Add(low)
	_ = r.Add(high)

	if got, ok := r.Tooltip(Pt(5, 5)); !ok || got != "high" {
		t.Errorf("Tooltip() = %q, %v, want the top layer", got, ok)
	}
	high.text = ""
	if got, _ := r.Tooltip(Pt(5, 5)); got != "low" {
		t.Errorf("Tooltip() = %q, want the layer beneath", got)
	}
	high.consume = true
	if _, ok := r.Tooltip(Pt(5, 5)); ok {
		t.Error("consuming layer should hide the layers beneath")
	}
}

func TestRenderer_ProcessRepaints(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	s := newFakeSurface(100, 100)

	ran, err := r.ProcessRepaints(s)
	if !ran || err != nil || l.paints != 1 {
		t.Fatalf("ProcessRepaints() = %v, %v with %d paints", ran, err, l.paints)
	}
	if ran, _ := r.ProcessRepaints(s); ran {
		t.Error("ProcessRepaints() ran without pending requests")
	}

	done := make(chan struct{})
	go func() {
		l.Repaint()
		close(done)
	}()
	<-done
	<-r.Queue().C()
	if ran, _ := r.ProcessRepaints(s); !ran || l.paints != 2 {
		t.Errorf("repaint from another goroutine not served: ran = %v, paints = %d", ran, l.paints)
	}
}

func TestRenderer_Events(t *testing.T) {
	r := NewRenderer(Geographic())
	var props []string
	unsubscribe := r.Subscribe(func(e Event) { props = append(props, e.Property) })
	_ = r.SetResolution(2)
	_ = r.Add(newTestLayer("l", 0, nil))
	unsubscribe()
	_ = r.SetResolution(3)
	if want := []string{PropertyResolution, PropertyLayers}; !slices.Equal(props, want) {
		t.Errorf("events = %v, want %v", props, want)
	}
}

func TestRenderer_Dispose(t *testing.T) {
	r := NewRenderer(Geographic())
	l := newTestLayer("l", 0, nil)
	_ = r.Add(l)
	r.Dispose()
	if !l.Disposed() {
		t.Error("Dispose() did not dispose the layers")
	}
	if err := r.Paint(newFakeSurface(1, 1), nil); !errors.Is(err, ErrDisposed) {
		t.Errorf("Paint() after Dispose error = %v, want ErrDisposed", err)
	}
	if err := r.Add(newTestLayer("m", 0, nil)); !errors.Is(err, ErrDisposed) {
		t.Errorf("Add() after Dispose error = %v, want ErrDisposed", err)
	}
}

func TestBaseLayer_WeakRenderer(t *testing.T) {
	l := newTestLayer("l", 0, nil)
	func() {
		r := NewRenderer(Geographic())
		_ = r.Add(l)
	}()
	for range 10 {
		runtime.GC()
		if l.Renderer() == nil {
			return
		}
	}
	t.Error("layer kept its renderer alive")
}

func TestBaseLayer_PreferredArea(t *testing.T) {
	l := NewBaseLayer("l", Geographic())
	if area, _ := l.PreferredArea(); !area.IsEmpty() {
		t.Errorf("PreferredArea() = %+v, want empty", area)
	}
	var got []string
	l.Subscribe(func(e Event) { got = append(got, e.Property) })
	l.SetPreferredArea(R(0, 0, 10, 10), 0.01)
	area, px := l.PreferredArea()
	if area != R(0, 0, 10, 10) || px != 0.01 {
		t.Errorf("PreferredArea() = %+v, %v", area, px)
	}
	if len(got) != 1 || got[0] != PropertyPreferredArea {
		t.Errorf("events = %v, want [%s]", got, PropertyPreferredArea)
	}
}
