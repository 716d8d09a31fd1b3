package carto

import (
	"context"
	"fmt"
	"math"
)

// Labeler lays out text into glyph runs. It is implemented by label.Face.
type Labeler interface {
	Layout(text string, size float64) (*GlyphRun, error)
}

// stage classifies a coordinate system relative to a pass.
type stage uint8

const (
	stageOther stage = iota
	stageMap
	stageText
	stageDevice
)

// RenderingContext is the state of one paint pass.
//
// It exposes three coordinate systems: the map system shared by every
// layer (the renderer's display system), the text system of device
// independent points, and the device system of the output surface. The map
// to text transform is the renderer zoom; the text to device transform is
// the identity on screen and a scale when printing.
//
// A RenderingContext is used by one goroutine and is only valid during the
// pass that created it.
type RenderingContext struct {
	ctx      context.Context
	renderer *Renderer
	surface  Surface
	clip     *Rect
	printing bool

	mapCS        *CoordinateSystem
	mapToText    Affine
	textToDevice Affine
	mapToDevice  Affine

	active *CoordinateSystem
	layer  *BaseLayer

	// painted accumulates declared areas in text space. first holds the
	// only area until a second one promotes the accumulator to an Area.
	first   Shape
	painted *Area
}

func newRenderingContext(ctx context.Context, r *Renderer, s Surface, clip *Rect, textToDevice Affine, printing bool) *RenderingContext {
	rc := &RenderingContext{
		ctx:          ctx,
		renderer:     r,
		surface:      s,
		clip:         clip,
		printing:     printing,
		mapCS:        r.displayCS,
		mapToText:    r.zoom,
		textToDevice: textToDevice,
	}
	rc.mapToDevice = textToDevice.Multiply(r.zoom)
	return rc
}

// beginLayer resets the per-layer state before l is painted.
func (rc *RenderingContext) beginLayer(l *BaseLayer) {
	rc.layer = l
	rc.first, rc.painted = nil, nil
	rc.active = nil
	if rc.surface != nil {
		rc.surface.SetTransform(rc.textToDevice)
		rc.active = Text()
	}
}

// Context returns the context of the pass.
func (rc *RenderingContext) Context() context.Context { return rc.ctx }

// Renderer returns the renderer running the pass.
func (rc *RenderingContext) Renderer() *Renderer { return rc.renderer }

// Surface returns the output surface.
func (rc *RenderingContext) Surface() Surface { return rc.surface }

// Styles returns the style provider of the renderer.
func (rc *RenderingContext) Styles() StyleProvider { return rc.renderer.styles }

// Labeler returns the renderer labeler, or nil.
func (rc *RenderingContext) Labeler() Labeler { return rc.renderer.labeler }

// IsPrinting reports whether the pass renders to a print surface. Layers
// lacking data must wait for it when printing instead of skipping it.
func (rc *RenderingContext) IsPrinting() bool { return rc.printing }

// Resolution returns the renderer resolution in device pixels.
func (rc *RenderingContext) Resolution() float64 { return rc.renderer.resolution }

// Bounds returns the surface bounds in device pixels.
func (rc *RenderingContext) Bounds() Rect {
	if rc.surface == nil {
		return rc.renderer.bounds
	}
	return rc.surface.Bounds()
}

// Clip returns the device clip of the pass and false when the whole
// surface is repainted.
func (rc *RenderingContext) Clip() (Rect, bool) {
	if rc.clip == nil {
		return rc.Bounds(), false
	}
	return *rc.clip, true
}

// MapCS returns the map coordinate system.
func (rc *RenderingContext) MapCS() *CoordinateSystem { return rc.mapCS }

// TextCS returns the text coordinate system.
func (rc *RenderingContext) TextCS() *CoordinateSystem { return Text() }

// DeviceCS returns the device coordinate system.
func (rc *RenderingContext) DeviceCS() *CoordinateSystem { return Device() }

// TextToDevice returns the text to device transform.
func (rc *RenderingContext) TextToDevice() Affine { return rc.textToDevice }

// MapToText returns the zoom of the pass.
func (rc *RenderingContext) MapToText() Affine { return rc.mapToText }

func (rc *RenderingContext) stageOf(cs *CoordinateSystem) stage {
	switch {
	case Equivalent(cs, rc.mapCS):
		return stageMap
	case Equivalent(cs, Text()):
		return stageText
	case Equivalent(cs, Device()):
		return stageDevice
	}
	return stageOther
}

// toDevice returns the matrix from a display stage to device space.
func (rc *RenderingContext) toDevice(s stage) Affine {
	switch s {
	case stageMap:
		return rc.mapToDevice
	case stageText:
		return rc.textToDevice
	}
	return Identity()
}

// Transform returns the transform from a to b. Systems other than the
// three display systems are routed through the map system using the
// renderer transform factory.
func (rc *RenderingContext) Transform(a, b *CoordinateSystem) (Transform, error) {
	if Equivalent(a, b) {
		return IdentityTransform(a), nil
	}
	sa, sb := rc.stageOf(a), rc.stageOf(b)
	switch {
	case sa == stageOther && sb == stageOther:
		return rc.renderer.Transform(a, b)
	case sa == stageOther:
		toMap, err := rc.renderer.Transform(a, rc.mapCS)
		if err != nil {
			return nil, err
		}
		rest, err := rc.Transform(rc.mapCS, b)
		if err != nil {
			return nil, err
		}
		return Concatenate(toMap, rest), nil
	case sb == stageOther:
		head, err := rc.Transform(a, rc.mapCS)
		if err != nil {
			return nil, err
		}
		fromMap, err := rc.renderer.Transform(rc.mapCS, b)
		if err != nil {
			return nil, err
		}
		return Concatenate(head, fromMap), nil
	}
	inv, err := rc.toDevice(sb).Invert()
	if err != nil {
		return nil, &TransformCreationError{Source: a, Target: b, Err: err}
	}
	return NewAffineTransform(a, b, inv.Multiply(rc.toDevice(sa))), nil
}

// AffineTransform returns the matrix from a to b, failing with
// ErrNotAffine when the composed transform is not affine.
func (rc *RenderingContext) AffineTransform(a, b *CoordinateSystem) (Affine, error) {
	t, err := rc.Transform(a, b)
	if err != nil {
		return Affine{}, err
	}
	m, ok := AsAffine(t)
	if !ok {
		return Affine{}, fmt.Errorf("%w: %s -> %s", ErrNotAffine, a, b)
	}
	return m, nil
}

// SetCoordinateSystem makes cs the user space of the surface. Switching to
// the map system uses the cached map to device matrix.
func (rc *RenderingContext) SetCoordinateSystem(cs *CoordinateSystem) error {
	if rc.surface == nil {
		return nil
	}
	if rc.active != nil && Equivalent(rc.active, cs) {
		return nil
	}
	var m Affine
	switch rc.stageOf(cs) {
	case stageMap:
		m = rc.mapToDevice
	case stageText:
		m = rc.textToDevice
	case stageDevice:
		m = Identity()
	default:
		var err error
		m, err = rc.AffineTransform(cs, Device())
		if err != nil {
			return err
		}
	}
	rc.surface.SetTransform(m)
	rc.active = cs
	return nil
}

// AddPaintedArea declares that s, expressed in cs, was painted during the
// pass. The area is converted to text space and unioned with the areas
// declared before.
func (rc *RenderingContext) AddPaintedArea(s Shape, cs *CoordinateSystem) error {
	if s == nil {
		return nil
	}
	m, err := rc.AffineTransform(cs, Text())
	if err != nil {
		return err
	}
	if !m.IsIdentity() {
		s = transformShape(s, m)
	}
	switch {
	case rc.painted != nil:
		rc.painted.Add(s)
	case rc.first == nil:
		rc.first = s
	default:
		rc.painted = NewArea(rc.first, s)
		rc.first = nil
	}
	return nil
}

// PaintedArea returns the text space union of the declared areas, or nil
// when nothing was declared.
func (rc *RenderingContext) PaintedArea() Shape {
	if rc.painted != nil {
		return rc.painted
	}
	return rc.first
}

// VisibleBounds returns the bounds, in cs, of the part of the surface being
// repainted. Non-affine transforms are handled by sampling the clip
// outline.
func (rc *RenderingContext) VisibleBounds(cs *CoordinateSystem) (Rect, error) {
	clip, _ := rc.Clip()
	return rc.deviceBoundsIn(clip, cs)
}

// SurfaceBounds returns the bounds, in cs, of the whole surface, ignoring
// the clip of the pass.
func (rc *RenderingContext) SurfaceBounds(cs *CoordinateSystem) (Rect, error) {
	return rc.deviceBoundsIn(rc.Bounds(), cs)
}

func (rc *RenderingContext) deviceBoundsIn(clip Rect, cs *CoordinateSystem) (Rect, error) {
	if clip.IsEmpty() {
		return EmptyRect(), nil
	}
	t, err := rc.Transform(Device(), cs)
	if err != nil {
		return EmptyRect(), err
	}
	if m, ok := AsAffine(t); ok {
		return m.TransformRect(clip), nil
	}
	const samples = 8
	out := EmptyRect()
	c := clip.Corners()
	for i := range 4 {
		a, b := c[i], c[(i+1)%4]
		for k := range samples {
			f := float64(k) / samples
			p, err := t.Apply(Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f})
			if err != nil {
				return EmptyRect(), &TransformError{Layer: rc.layerName(), Point: p, Err: err}
			}
			if !p.IsNaN() {
				out = out.Extend(p)
			}
		}
	}
	return out, nil
}

// PixelSize returns the size of one device pixel expressed in cs units at
// the centre of the visible area. It returns NaN when cs has unknown units
// or the size cannot be derived.
func (rc *RenderingContext) PixelSize(cs *CoordinateSystem) float64 {
	if cs == nil || !cs.Units.IsKnown() {
		return math.NaN()
	}
	t, err := rc.Transform(Device(), cs)
	if err != nil {
		return math.NaN()
	}
	if m, ok := AsAffine(t); ok {
		return m.ScaleFactor()
	}
	clip, _ := rc.Clip()
	c := clip.Center()
	p0, err0 := t.Apply(c)
	p1, err1 := t.Apply(Point{X: c.X + 1, Y: c.Y})
	p2, err2 := t.Apply(Point{X: c.X, Y: c.Y + 1})
	if err0 != nil || err1 != nil || err2 != nil {
		return math.NaN()
	}
	return math.Sqrt(math.Abs(p1.Sub(p0).Cross(p2.Sub(p0))))
}

func (rc *RenderingContext) layerName() string {
	if rc.layer == nil {
		return ""
	}
	return rc.layer.name
}

// DrawPlaceholder renders the "ERROR" placeholder over bounds, in text
// space, and logs reason. It is used when a layer cannot be rendered
// meaningfully, for example when its units are unknown.
func (rc *RenderingContext) DrawPlaceholder(bounds Rect, reason string) {
	Logger().Warn("carto: rendering placeholder", "layer", rc.layerName(), "reason", reason)
	if rc.surface == nil {
		return
	}
	if bounds.IsEmpty() {
		inv, err := rc.textToDevice.Invert()
		if err != nil {
			return
		}
		bounds = inv.TransformRect(rc.Bounds())
	}
	if err := rc.SetCoordinateSystem(Text()); err != nil {
		return
	}
	style := rc.Styles().StyleFor(PrimitivePlaceholder, reason)
	if style.Stroke != nil {
		rc.surface.SetPaint(style.Stroke)
		rc.surface.SetStroke(style.StrokeStyle())
		rc.surface.Draw(bounds)
		c := bounds.Corners()
		rc.surface.Draw(Polyline(c[0], c[2]))
		rc.surface.Draw(Polyline(c[1], c[3]))
	}
	if lb := rc.Labeler(); lb != nil && style.Fill != nil {
		run, err := lb.Layout("ERROR", 12)
		if err == nil && run != nil {
			rc.surface.SetPaint(style.Fill)
			x := bounds.Center().X - run.Advance/2
			y := bounds.Center().Y + (run.Ascent-run.Descent)/2
			rc.surface.DrawGlyphs(run, x, y)
		}
	}
	_ = rc.AddPaintedArea(bounds, Text())
}
