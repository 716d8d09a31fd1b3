package geometry

import (
	"slices"

	"github.com/aclements/go-moremath/scale"

	"github.com/gogpu/carto"
)

// Isoline is a set of contour lines sharing one value.
type Isoline struct {
	Value    float64
	Geometry Geometry
}

type isolineState struct {
	Isoline
	clips *ClipCache
}

// RenderedIsolines is a layer drawing contour lines. Each isoline keeps
// its own clip cache and is styled by its value normalised to [0, 1] over
// the values of the layer.
type RenderedIsolines struct {
	*carto.BaseLayer

	isolines  []isolineState
	cacheSize int
	values    scale.Linear
}

// NewRenderedIsolines creates a layer drawing lines, which must share one
// coordinate system.
func NewRenderedIsolines(name string, cs *carto.CoordinateSystem, lines []Isoline, opts ...GeometriesOption) *RenderedIsolines {
	o := defaultGeometriesOptions()
	for _, opt := range opts {
		opt(&o)
	}
	l := &RenderedIsolines{
		BaseLayer: carto.NewBaseLayer(name, cs),
		cacheSize: o.cacheSize,
	}
	l.setIsolines(lines)
	return l
}

func (l *RenderedIsolines) setIsolines(lines []Isoline) {
	l.isolines = l.isolines[:0]
	for _, iso := range lines {
		if iso.Geometry == nil {
			continue
		}
		l.isolines = append(l.isolines, isolineState{Isoline: iso, clips: NewClipCache(l.cacheSize)})
	}
	slices.SortStableFunc(l.isolines, func(a, b isolineState) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	l.values = scale.Linear{}
	if len(l.isolines) > 0 {
		l.values.Min = l.isolines[0].Value
		l.values.Max = l.isolines[len(l.isolines)-1].Value
	}
}

// SetIsolines replaces the drawn isolines and repaints.
func (l *RenderedIsolines) SetIsolines(lines []Isoline) {
	lock := l.TreeLock()
	lock.Lock()
	l.setIsolines(lines)
	l.Invalidate()
	lock.Unlock()
	l.Publish(carto.PropertyData, nil, len(lines))
	l.Repaint()
}

// Values returns the isoline values in ascending order.
func (l *RenderedIsolines) Values() []float64 {
	lock := l.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	out := make([]float64, len(l.isolines))
	for i, iso := range l.isolines {
		out[i] = iso.Value
	}
	return out
}

// normalize maps v to [0, 1] over the layer value range.
func (l *RenderedIsolines) normalize(v float64) float64 {
	if l.values.Max <= l.values.Min {
		return 0
	}
	return l.values.Map(v)
}

// Dispose implements carto.Layer. It drops the clipped subsets of every
// isoline.
func (l *RenderedIsolines) Dispose() {
	lock := l.TreeLock()
	lock.Lock()
	for i := range l.isolines {
		l.isolines[i].clips.Clear()
	}
	lock.Unlock()
	l.BaseLayer.Dispose()
}

// Paint implements carto.Layer. Isolines are drawn from the lowest value
// up; the first failure stops the pass.
func (l *RenderedIsolines) Paint(rc *carto.RenderingContext) error {
	for i := range l.isolines {
		iso := &l.isolines[i]
		style := rc.Styles().StyleFor(carto.PrimitiveIsoline, l.normalize(iso.Value))
		if err := paintGeometry(rc, iso.Geometry, iso.clips, style, false); err != nil {
			return err
		}
	}
	return nil
}
