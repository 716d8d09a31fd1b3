package marks

import (
	"image"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/internal/cache"
)

// RenderedMarks is a layer drawing the marks of a Source.
//
// The first paint after a change iterates the whole source, projects each
// mark to text space and keeps the marks that fall on the surface in a
// compact batch. Later paints draw the batch directly until the view, the
// surface or the data changes. The batch is rebuilt as a whole whenever any
// validity bit is missing.
type RenderedMarks struct {
	*carto.BaseLayer

	src   Source
	opts  marksOptions
	shape carto.Shape
	rms   float64

	valid Validity
	batch batch
	view  carto.Affine
	area  carto.Rect
	boxes *cache.Cache[image.Point, *carto.Rect]

	rebuilds int
}

var _ carto.Tool = (*RenderedMarks)(nil)

// NewRenderedMarks creates a layer drawing src.
func NewRenderedMarks(name string, src Source, opts ...MarksOption) *RenderedMarks {
	o := defaultMarksOptions()
	for _, opt := range opts {
		opt(&o)
	}
	var cs *carto.CoordinateSystem
	if src != nil {
		cs = src.CoordinateSystem()
	}
	l := &RenderedMarks{
		BaseLayer: carto.NewBaseLayer(name, cs),
		src:       src,
		opts:      o,
		boxes:     cache.New[image.Point, *carto.Rect](o.iconPool),
	}
	l.batch.bounds = carto.EmptyRect()
	l.shape = l.defaultShape()
	return l
}

func (l *RenderedMarks) defaultShape() carto.Shape {
	if l.opts.shape != nil {
		return l.opts.shape
	}
	if v, ok := l.src.(interface{ IsVector() bool }); ok && v.IsVector() {
		return Arrow()
	}
	return Circle(3)
}

// Source returns the mark source.
func (l *RenderedMarks) Source() Source {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return l.src
}

// SetSource replaces the mark source and repaints.
func (l *RenderedMarks) SetSource(src Source) {
	lock := l.TreeLock()
	lock.Lock()
	old := l.src
	l.src = src
	l.rms = 0
	l.shape = l.defaultShape()
	l.invalidate(ValidAll)
	l.Invalidate()
	lock.Unlock()
	if src != nil {
		l.SetCoordinateSystem(src.CoordinateSystem())
	}
	l.Publish(carto.PropertyData, old, src)
	l.Repaint()
}

// TypicalAmplitude returns the amplitude drawn at the natural shape size.
func (l *RenderedMarks) TypicalAmplitude() float64 {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return l.typicalAmplitude()
}

// SetTypicalAmplitude sets the typical amplitude; a non-positive value
// selects the root mean square of the source amplitudes.
func (l *RenderedMarks) SetTypicalAmplitude(a float64) {
	lock := l.TreeLock()
	lock.Lock()
	l.opts.typical = max(a, 0)
	l.invalidate(ValidAll)
	l.Invalidate()
	lock.Unlock()
	l.Repaint()
}

func (l *RenderedMarks) typicalAmplitude() float64 {
	if l.opts.typical > 0 {
		return l.opts.typical
	}
	if l.rms == 0 && l.src != nil {
		var squares stats.Sample
		for it := l.src.Iterator(); it.Next(); {
			if _, ok := it.Position(); !ok {
				continue
			}
			a := it.Amplitude()
			squares.Xs = append(squares.Xs, a*a)
		}
		l.rms = 1
		if len(squares.Xs) > 0 {
			if rms := math.Sqrt(squares.Mean()); rms > 0 && !math.IsInf(rms, 0) {
				l.rms = rms
			}
		}
	}
	return l.rms
}

// Validity returns the bits of the batch that are up to date.
func (l *RenderedMarks) Validity() Validity {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return l.valid
}

// InvalidateMarks clears the mask bits. Any non-zero mask empties the
// whole batch, keeping its capacity, since the next paint rebuilds every
// array. It does not request a repaint.
func (l *RenderedMarks) InvalidateMarks(mask Validity) {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	l.invalidate(mask)
}

func (l *RenderedMarks) invalidate(mask Validity) {
	l.valid &^= mask
	if mask != 0 {
		l.batch.clear()
	}
}

// Len returns the number of marks in the batch.
func (l *RenderedMarks) Len() int {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return l.batch.Len()
}

// Rebuilds returns the number of batch rebuilds since creation.
func (l *RenderedMarks) Rebuilds() int {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return l.rebuilds
}

// ZoomChanged implements carto.Layer. Any change other than the identity
// invalidates the batch.
func (l *RenderedMarks) ZoomChanged(change *carto.Affine) {
	l.BaseLayer.ZoomChanged(change)
	if change == nil || !change.IsIdentity() {
		l.invalidate(ValidAll)
	}
}

// Dispose implements carto.Layer.
func (l *RenderedMarks) Dispose() {
	lock := l.TreeLock()
	lock.Lock()
	l.invalidate(ValidAll)
	l.batch.trim()
	l.boxes.Clear()
	lock.Unlock()
	l.BaseLayer.Dispose()
}

// Paint implements carto.Layer.
func (l *RenderedMarks) Paint(rc *carto.RenderingContext) error {
	if l.src == nil {
		return nil
	}
	m, err := rc.AffineTransform(rc.DeviceCS(), rc.TextCS())
	if err != nil {
		return err
	}
	area := m.TransformRect(rc.Bounds())
	if area != l.area || rc.MapToText() != l.view {
		l.invalidate(ValidArea | ValidShape)
	}
	if l.valid != ValidAll {
		if d, ok := l.src.(Decimated); ok {
			cs := l.src.CoordinateSystem()
			px := rc.PixelSize(cs)
			if math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
				rc.DrawPlaceholder(carto.EmptyRect(), "no pixel size in "+cs.String())
				return nil
			}
			d.SetPixelSize(px)
		}
		if err := l.rebuild(rc, area); err != nil {
			l.invalidate(ValidAll)
			return err
		}
	}
	return l.draw(rc)
}

// rebuild refills the batch from a new iterator.
func (l *RenderedMarks) rebuild(rc *carto.RenderingContext, area carto.Rect) error {
	cs := l.src.CoordinateSystem()
	toMap, err := rc.Transform(cs, rc.MapCS())
	if err != nil {
		return err
	}
	view := rc.MapToText()
	norm := view.Normalized()
	typical := l.typicalAmplitude()
	labeler := rc.Labeler()

	l.batch.clear()
	scanned := 0
	for it := l.src.Iterator(); it.Next(); {
		scanned++
		if !it.Visible() {
			continue
		}
		p, ok := it.Position()
		if !ok {
			continue
		}
		q, err := toMap.Apply(p)
		if err != nil {
			return &carto.TransformError{Layer: l.Name(), Point: p, Err: err}
		}
		if q.IsNaN() {
			continue
		}
		t := view.TransformPoint(q)
		k := it.Amplitude() / typical
		m := carto.Translate(t.X, t.Y).
			Multiply(norm).
			Multiply(carto.Rotate(it.Direction())).
			Multiply(carto.Scale(k, k))

		s := it.Shape()
		if s == nil {
			s = l.shape
		}
		bounds := m.TransformRect(s.Bounds())

		icon := it.Icon()
		var box *carto.Rect
		if icon != nil {
			box = l.iconBox(icon.Bounds().Size())
			bounds = bounds.Union(carto.Translate(t.X, t.Y).TransformRect(*box))
		}

		var run *carto.GlyphRun
		var ax, ay float64
		if text := it.Label(); text != "" && labeler != nil {
			run, err = labeler.Layout(text, l.opts.labelSize)
			if err != nil {
				carto.Logger().Warn("marks: label layout failed", "layer", l.Name(), "label", text, "err", err)
				run = nil
			}
			if run != nil {
				ax = bounds.MaxX + l.opts.labelGap
				ay = t.Y + (run.Ascent-run.Descent)/2
				bounds = bounds.Union(carto.Translate(ax, ay).TransformRect(run.Bounds()))
			}
		}

		if !bounds.Intersects(area) {
			continue
		}
		l.batch.appendShape(it.Index(), m, s)
		l.batch.appendIcon(icon, box)
		l.batch.appendGlyphs(run, ax, ay)
		l.batch.bounds = l.batch.bounds.Union(bounds)
	}
	l.batch.trim()
	l.batch.check()

	l.valid = ValidAll
	l.view = view
	l.area = area
	l.rebuilds++
	carto.Logger().Debug("marks: batch rebuilt",
		"layer", l.Name(), "scanned", scanned, "kept", l.batch.Len(), "typical", typical)
	return nil
}

// iconBox returns the shared box of icons of the given size, centred on
// the origin.
func (l *RenderedMarks) iconBox(size image.Point) *carto.Rect {
	return l.boxes.GetOrCreate(size, func() *carto.Rect {
		w, h := float64(size.X), float64(size.Y)
		r := carto.R(-w/2, -h/2, w, h)
		return &r
	})
}

// draw replays the batch in text space.
func (l *RenderedMarks) draw(rc *carto.RenderingContext) error {
	b := &l.batch
	if b.Len() == 0 {
		return nil
	}
	b.check()
	if err := rc.SetCoordinateSystem(rc.TextCS()); err != nil {
		return err
	}
	visible := carto.EmptyRect()
	partial := false
	if clip, ok := rc.Clip(); ok {
		if inv, err := rc.TextToDevice().Invert(); err == nil {
			visible, partial = inv.TransformRect(clip), true
		}
	}

	s := rc.Surface()
	styles := rc.Styles()
	labelStyle := styles.StyleFor(carto.PrimitiveLabel, l.Name())
	width := 0.0
	for i := range b.Len() {
		m := b.transform(i)
		if partial && !m.TransformRect(b.shapes[i].Bounds()).Intersects(visible) {
			continue
		}
		shape := carto.NewTransformedShape(b.shapes[i], m)
		style := styles.StyleFor(carto.PrimitiveMark, int(b.indices[i]))
		if style.Fill != nil {
			s.SetPaint(style.Fill)
			s.Fill(shape)
		}
		if style.Stroke != nil {
			s.SetPaint(style.Stroke)
			s.SetStroke(style.StrokeStyle())
			s.Draw(shape)
			width = max(width, style.StrokeStyle().Width)
		}
		if img := b.icons[i]; img != nil {
			box, origin := b.iconBoxes[i], img.Bounds().Min
			s.DrawImage(img, carto.Translate(m.C+box.MinX-float64(origin.X), m.F+box.MinY-float64(origin.Y)))
		}
		if run := b.runs[i]; run != nil && labelStyle.Fill != nil {
			s.SetPaint(labelStyle.Fill)
			s.DrawGlyphs(run, float64(b.anchors[2*i]), float64(b.anchors[2*i+1]))
		}
	}
	w := width / 2
	bb := b.bounds
	return rc.AddPaintedArea(carto.Rect{MinX: bb.MinX - w, MinY: bb.MinY - w, MaxX: bb.MaxX + w, MaxY: bb.MaxY + w}, rc.TextCS())
}

// Tooltip implements carto.Tool. It describes the topmost mark under p,
// a point in device pixels of the last screen pass. The renderer calls it
// with the tree lock held.
func (l *RenderedMarks) Tooltip(p carto.Point) (string, bool) {
	i, ok := l.hit(p)
	if !ok {
		return "", false
	}
	return l.describe(i), true
}

// Consume implements carto.Tool. Marks never consume events.
func (l *RenderedMarks) Consume(carto.Point) bool { return false }

// hit returns the source index of the topmost batched mark containing p.
func (l *RenderedMarks) hit(p carto.Point) (int, bool) {
	b := &l.batch
	for i := b.Len() - 1; i >= 0; i-- {
		if carto.NewTransformedShape(b.shapes[i], b.transform(i)).Contains(p) {
			return int(b.indices[i]), true
		}
	}
	return 0, false
}

// describe returns the label of mark index, or its amplitude.
func (l *RenderedMarks) describe(index int) string {
	it := l.src.Iterator()
	it.Seek(index)
	if text := it.Label(); text != "" {
		return text
	}
	s := strconv.FormatFloat(it.Amplitude(), 'g', 3, 64)
	if u, ok := l.src.(interface{ Units() string }); ok && u.Units() != "" {
		s += " " + u.Units()
	}
	return s
}
