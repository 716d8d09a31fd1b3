package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/carto"
)

// OpKind names a recorded drawing operation.
type OpKind uint8

// Recorded operation kinds.
const (
	OpFill OpKind = iota
	OpDraw
	OpImage
	OpGlyphs
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpFill:
		return "fill"
	case OpDraw:
		return "draw"
	case OpImage:
		return "image"
	case OpGlyphs:
		return "glyphs"
	default:
		return "unknown"
	}
}

// Op is one recorded drawing operation with the state it was issued in.
type Op struct {
	Kind      OpKind
	Transform carto.Affine
	Clip      carto.Rect
	Paint     color.Color
	Stroke    carto.Stroke

	// Bounds is the device extent of the operation, before clipping.
	Bounds carto.Rect

	Shape  carto.Shape  // OpFill, OpDraw
	Image  image.Image  // OpImage
	Matrix carto.Affine // OpImage
	Run    *carto.GlyphRun
	X, Y   float64 // OpGlyphs origin
}

// Recorder is a surface that records operations instead of drawing them.
// Recordings can be inspected or replayed onto another surface.
type Recorder struct {
	state
	ops []Op
}

var _ carto.Surface = (*Recorder)(nil)

// NewRecorder creates a recorder with the given device size.
func NewRecorder(width, height int, opts ...SurfaceOption) *Recorder {
	o := buildOptions(width, height, opts)
	return &Recorder{state: newState(float64(o.Width), float64(o.Height))}
}

func (r *Recorder) record(op Op) {
	op.Transform = r.transform
	op.Clip = r.clip
	op.Paint = r.paint
	op.Stroke = r.stroke
	r.ops = append(r.ops, op)
}

// Fill implements carto.Surface.
func (r *Recorder) Fill(s carto.Shape) {
	if s == nil {
		return
	}
	r.record(Op{Kind: OpFill, Shape: s, Bounds: r.transform.TransformRect(s.Bounds())})
}

// Draw implements carto.Surface.
func (r *Recorder) Draw(s carto.Shape) {
	if s == nil {
		return
	}
	b := r.transform.TransformRect(s.Bounds())
	w := max(r.stroke.Width*r.transform.ScaleFactor(), 1) / 2
	b = carto.Rect{MinX: b.MinX - w, MinY: b.MinY - w, MaxX: b.MaxX + w, MaxY: b.MaxY + w}
	r.record(Op{Kind: OpDraw, Shape: s, Bounds: b})
}

// DrawImage implements carto.Surface.
func (r *Recorder) DrawImage(img image.Image, m carto.Affine) {
	if img == nil {
		return
	}
	ib := img.Bounds()
	b := r.transform.Multiply(m).TransformRect(carto.Rect{
		MinX: float64(ib.Min.X), MinY: float64(ib.Min.Y),
		MaxX: float64(ib.Max.X), MaxY: float64(ib.Max.Y),
	})
	r.record(Op{Kind: OpImage, Image: img, Matrix: m, Bounds: b})
}

// DrawGlyphs implements carto.Surface.
func (r *Recorder) DrawGlyphs(run *carto.GlyphRun, x, y float64) {
	if run == nil {
		return
	}
	b := run.Bounds()
	b = carto.Rect{MinX: b.MinX + x, MinY: b.MinY + y, MaxX: b.MaxX + x, MaxY: b.MaxY + y}
	r.record(Op{Kind: OpGlyphs, Run: run, X: x, Y: y, Bounds: r.transform.TransformRect(b)})
}

// Ops returns the recorded operations in issue order.
func (r *Recorder) Ops() []Op { return r.ops }

// Count returns the number of recorded operations of kind k.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Reset drops the recording and restores the initial state.
func (r *Recorder) Reset() {
	clear(r.ops)
	r.ops = r.ops[:0]
	r.state = newState(r.bounds.MaxX, r.bounds.MaxY)
}

// Replay issues the recorded operations on dst with the state they were
// recorded in.
func (r *Recorder) Replay(dst carto.Surface) {
	for _, op := range r.ops {
		dst.SetTransform(op.Transform)
		dst.SetClip(op.Clip)
		dst.SetPaint(op.Paint)
		dst.SetStroke(op.Stroke)
		switch op.Kind {
		case OpFill:
			dst.Fill(op.Shape)
		case OpDraw:
			dst.Draw(op.Shape)
		case OpImage:
			dst.DrawImage(op.Image, op.Matrix)
		case OpGlyphs:
			dst.DrawGlyphs(op.Run, op.X, op.Y)
		}
	}
}
