package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/internal/stroke"
)

// state is the part of carto.Surface shared by every backend.
type state struct {
	bounds    carto.Rect
	transform carto.Affine
	clip      carto.Rect
	paint     color.Color
	stroke    carto.Stroke
}

func newState(width, height float64) state {
	b := carto.Rect{MaxX: width, MaxY: height}
	return state{
		bounds:    b,
		transform: carto.Identity(),
		clip:      b,
		paint:     carto.Black,
		stroke:    carto.DefaultStroke(),
	}
}

// Bounds implements carto.Surface.
func (s *state) Bounds() carto.Rect { return s.bounds }

// Transform implements carto.Surface.
func (s *state) Transform() carto.Affine { return s.transform }

// SetTransform implements carto.Surface.
func (s *state) SetTransform(m carto.Affine) { s.transform = m }

// ClipBounds implements carto.Surface.
func (s *state) ClipBounds() carto.Rect { return s.clip }

// SetClip implements carto.Surface. The clip never extends past the
// surface bounds.
func (s *state) SetClip(r carto.Rect) { s.clip = r.Intersect(s.bounds) }

// SetPaint implements carto.Surface. A nil colour paints black.
func (s *state) SetPaint(c color.Color) {
	if c == nil {
		c = carto.Black
	}
	s.paint = c
}

// SetStroke implements carto.Surface.
func (s *state) SetStroke(st carto.Stroke) { s.stroke = st }

// devicePath returns shape mapped to device pixels.
func (s *state) devicePath(shape carto.Shape) *carto.Path {
	p := carto.NewPath()
	if src, ok := shape.(*carto.Path); ok {
		p.Rule = src.Rule
	}
	shape.AppendPath(p, s.transform)
	return p
}

// outline returns the device fill outline of shape stroked with the
// current stroke. Strokes thinner than a pixel are drawn one pixel wide.
func (s *state) outline(shape carto.Shape) *carto.Path {
	st := s.stroke
	st.Width = max(st.Width*s.transform.ScaleFactor(), 1)
	return stroke.NewExpander(st).Expand(s.devicePath(shape))
}

// glyphPath returns the device outlines of run with its origin at (x, y).
func (s *state) glyphPath(run *carto.GlyphRun, x, y float64) *carto.Path {
	p := carto.NewPath()
	run.AppendPath(p, s.transform.Multiply(carto.Translate(x, y)))
	return p
}

// pixelRect returns the pixels touched by r inside the clip.
func (s *state) pixelRect(r carto.Rect) image.Rectangle {
	r = r.Intersect(s.clip)
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.MinX)), int(math.Floor(r.MinY)),
		int(math.Ceil(r.MaxX)), int(math.Ceil(r.MaxY)),
	)
}
