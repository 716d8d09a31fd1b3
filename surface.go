package carto

import (
	"image"
	"image/color"
)

// LineCap specifies the shape of open stroke ends.
type LineCap uint8

// Line cap constants.
const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin specifies the shape of stroke corners.
type LineJoin uint8

// Line join constants.
const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Stroke describes how outlines are drawn.
type Stroke struct {
	// Width is the line width in the surface's current user space.
	Width float64
	Cap   LineCap
	Join  LineJoin
}

// DefaultStroke returns a one unit wide butt-capped stroke.
func DefaultStroke() Stroke {
	return Stroke{Width: 1}
}

// Surface is the output target of a paint pass.
//
// Shapes are given in user space and mapped to device pixels by the current
// transform. ClipBounds is expressed in device pixels. Surfaces are not safe
// for concurrent use; the renderer only touches them from the goroutine that
// runs the pass.
type Surface interface {
	// Bounds returns the surface extent in device pixels.
	Bounds() Rect

	// Transform returns the user to device transform.
	Transform() Affine
	// SetTransform replaces the user to device transform.
	SetTransform(m Affine)

	// ClipBounds returns the device clip rectangle.
	ClipBounds() Rect
	// SetClip restricts drawing to r, in device pixels.
	SetClip(r Rect)

	// SetPaint sets the colour used by Fill, Draw and DrawGlyphs.
	SetPaint(c color.Color)
	// SetStroke sets the stroke used by Draw.
	SetStroke(s Stroke)

	// Fill fills the interior of s.
	Fill(s Shape)
	// Draw strokes the outline of s.
	Draw(s Shape)
	// DrawImage draws img mapped by m (image pixels to user space).
	DrawImage(img image.Image, m Affine)
	// DrawGlyphs fills run with its baseline origin at (x, y) in user space.
	DrawGlyphs(run *GlyphRun, x, y float64)
}

// GlyphID identifies a glyph within its font.
type GlyphID uint32

// Glyph is one positioned glyph of a run. X and Y are offsets from the run
// origin in run units (points at the run size), y pointing down.
type Glyph struct {
	ID   GlyphID
	X, Y float64
}

// GlyphSource provides glyph outlines.
type GlyphSource interface {
	// AppendGlyph appends the outline of id, scaled to size and transformed
	// by m, to p. The outline origin is the glyph baseline origin.
	AppendGlyph(p *Path, id GlyphID, size float64, m Affine)
}

// GlyphRun is a shaped line of text.
type GlyphRun struct {
	Source GlyphSource
	Size   float64
	Glyphs []Glyph
	Text   string

	// Advance is the total horizontal advance.
	Advance float64
	// Ascent and Descent are positive distances above and below the baseline.
	Ascent, Descent float64
}

// Bounds returns the logical bounds of the run relative to its baseline
// origin.
func (r *GlyphRun) Bounds() Rect {
	if r == nil || len(r.Glyphs) == 0 {
		return EmptyRect()
	}
	return Rect{MinX: 0, MinY: -r.Ascent, MaxX: r.Advance, MaxY: r.Descent}
}

// AppendPath appends the glyph outlines transformed by m. It lets a run be
// filled as an ordinary Shape by surfaces without native text support.
func (r *GlyphRun) AppendPath(p *Path, m Affine) {
	if r == nil || r.Source == nil {
		return
	}
	for _, g := range r.Glyphs {
		r.Source.AppendGlyph(p, g.ID, r.Size, m.Multiply(Translate(g.X, g.Y)))
	}
}

// Primitive names the kind of element a style is requested for.
type Primitive uint8

// Primitive constants.
const (
	PrimitiveGeometry Primitive = iota
	PrimitiveIsoline
	PrimitiveMark
	PrimitiveLabel
	PrimitiveIcon
	PrimitivePlaceholder
)

// String returns the primitive name.
func (p Primitive) String() string {
	switch p {
	case PrimitiveGeometry:
		return "geometry"
	case PrimitiveIsoline:
		return "isoline"
	case PrimitiveMark:
		return "mark"
	case PrimitiveLabel:
		return "label"
	case PrimitiveIcon:
		return "icon"
	case PrimitivePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Style is the paint applied to one primitive. A nil Fill or Stroke
// disables that operation.
type Style struct {
	Fill   color.Color
	Stroke color.Color
	Width  float64
}

// StrokeStyle returns the Stroke described by s.
func (s Style) StrokeStyle() Stroke {
	w := s.Width
	if w <= 0 {
		w = 1
	}
	return Stroke{Width: w, Join: JoinRound, Cap: CapRound}
}

// StyleProvider supplies styles for rendered primitives. Key identifies the
// styled element: an isoline value, a mark index or a layer name.
type StyleProvider interface {
	StyleFor(p Primitive, key any) Style
}

// StyleFunc adapts a function to StyleProvider.
type StyleFunc func(p Primitive, key any) Style

// StyleFor implements StyleProvider.
func (f StyleFunc) StyleFor(p Primitive, key any) Style { return f(p, key) }

// DefaultStyles is the StyleProvider used when none is configured.
type DefaultStyles struct{}

// StyleFor implements StyleProvider.
func (DefaultStyles) StyleFor(p Primitive, key any) Style {
	switch p {
	case PrimitiveGeometry:
		return Style{Stroke: Hex("#1f4e79"), Width: 1}
	case PrimitiveIsoline:
		if v, ok := key.(float64); ok {
			return Style{Stroke: HSL(240-clampUnit(v)*240, 0.8, 0.45), Width: 1}
		}
		return Style{Stroke: Hex("#555"), Width: 1}
	case PrimitiveMark:
		return Style{Fill: Hex("#d35400"), Stroke: Hex("#6e2c00"), Width: 0.5}
	case PrimitiveLabel:
		return Style{Fill: Black}
	case PrimitivePlaceholder:
		return Style{Fill: Red, Stroke: Red, Width: 1}
	default:
		return Style{Stroke: Black, Width: 1}
	}
}
