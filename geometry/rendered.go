package geometry

import (
	"errors"
	"math"

	"github.com/gogpu/carto"
)

// GeometriesOption configures a RenderedGeometries or RenderedIsolines
// layer during creation.
type GeometriesOption func(*geometriesOptions)

type geometriesOptions struct {
	cacheSize int
	fill      bool
	styleKey  any
}

func defaultGeometriesOptions() geometriesOptions {
	return geometriesOptions{cacheSize: DefaultClipCacheSize}
}

// WithClipCacheSize sets the number of clipped subsets kept per geometry.
// Defaults to DefaultClipCacheSize.
func WithClipCacheSize(n int) GeometriesOption {
	return func(o *geometriesOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithFill fills polygons in addition to stroking their outline.
func WithFill(fill bool) GeometriesOption {
	return func(o *geometriesOptions) {
		o.fill = fill
	}
}

// WithStyleKey sets the key passed to the style provider. Defaults to the
// layer name.
func WithStyleKey(key any) GeometriesOption {
	return func(o *geometriesOptions) {
		o.styleKey = key
	}
}

// RenderedGeometries is a layer drawing one Geometry through a clip cache.
type RenderedGeometries struct {
	*carto.BaseLayer

	geometry Geometry
	clips    *ClipCache
	fill     bool
	styleKey any
}

// NewRenderedGeometries creates a layer drawing g. The layer coordinate
// system is the one of g.
func NewRenderedGeometries(name string, g Geometry, opts ...GeometriesOption) *RenderedGeometries {
	o := defaultGeometriesOptions()
	for _, opt := range opts {
		opt(&o)
	}
	var cs *carto.CoordinateSystem
	if g != nil {
		cs = g.CoordinateSystem()
	}
	key := o.styleKey
	if key == nil {
		key = name
	}
	return &RenderedGeometries{
		BaseLayer: carto.NewBaseLayer(name, cs),
		geometry:  g,
		clips:     NewClipCache(o.cacheSize),
		fill:      o.fill,
		styleKey:  key,
	}
}

// Geometry returns the master geometry.
func (g *RenderedGeometries) Geometry() Geometry {
	lock := g.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return g.geometry
}

// SetGeometry replaces the master geometry, drops the cached subsets and
// repaints.
func (g *RenderedGeometries) SetGeometry(geom Geometry) {
	lock := g.TreeLock()
	lock.Lock()
	old := g.geometry
	g.geometry = geom
	g.clips.Clear()
	g.Invalidate()
	lock.Unlock()
	if geom != nil {
		g.SetCoordinateSystem(geom.CoordinateSystem())
	}
	g.Publish(carto.PropertyData, old, geom)
	g.Repaint()
}

// ClipCache returns the cache of clipped subsets. The caller must hold the
// tree lock while using it.
func (g *RenderedGeometries) ClipCache() *ClipCache { return g.clips }

// Dispose implements carto.Layer. It drops the clipped subsets.
func (g *RenderedGeometries) Dispose() {
	lock := g.TreeLock()
	lock.Lock()
	g.clips.Clear()
	lock.Unlock()
	g.BaseLayer.Dispose()
}

// Paint implements carto.Layer.
func (g *RenderedGeometries) Paint(rc *carto.RenderingContext) error {
	if g.geometry == nil {
		return nil
	}
	style := rc.Styles().StyleFor(carto.PrimitiveGeometry, g.styleKey)
	return paintGeometry(rc, g.geometry, g.clips, style, g.fill)
}

// paintGeometry draws the part of master on the surface of rc. Geometries
// in systems without a usable pixel size are replaced by a placeholder.
func paintGeometry(rc *carto.RenderingContext, master Geometry, clips *ClipCache, style carto.Style, fill bool) error {
	cs := master.CoordinateSystem()
	px := rc.PixelSize(cs)
	if math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
		bounds := carto.EmptyRect()
		if m, err := rc.AffineTransform(cs, rc.TextCS()); err == nil {
			bounds = m.TransformRect(master.BoundingBox())
		}
		rc.DrawPlaceholder(bounds, "no pixel size in "+cs.String())
		return nil
	}
	// The subset covers the whole surface, not the clip: the painted area
	// declared below replaces the previous one even on a partial pass.
	visible, err := rc.SurfaceBounds(cs)
	if err != nil {
		return err
	}
	sub, err := clips.Select(master, visible, cs)
	if err != nil || sub == nil {
		return err
	}
	AdjustResolution(sub, px*rc.Resolution())

	shape, err := textShape(rc, sub.Shape(), cs)
	if err != nil || shape == nil {
		return err
	}
	if err := rc.SetCoordinateSystem(rc.TextCS()); err != nil {
		return err
	}
	s := rc.Surface()
	if fill && style.Fill != nil {
		s.SetPaint(style.Fill)
		s.Fill(shape)
	}
	if style.Stroke != nil {
		s.SetPaint(style.Stroke)
		s.SetStroke(style.StrokeStyle())
		s.Draw(shape)
	}
	w := style.StrokeStyle().Width / 2
	b := shape.Bounds()
	return rc.AddPaintedArea(carto.Rect{MinX: b.MinX - w, MinY: b.MinY - w, MaxX: b.MaxX + w, MaxY: b.MaxY + w}, rc.TextCS())
}

// textShape maps s from cs to text space. Affine mappings wrap s; other
// mappings project every vertex.
func textShape(rc *carto.RenderingContext, s carto.Shape, cs *carto.CoordinateSystem) (carto.Shape, error) {
	m, err := rc.AffineTransform(cs, rc.TextCS())
	if err == nil {
		return carto.NewTransformedShape(s, m), nil
	}
	if !errors.Is(err, carto.ErrNotAffine) {
		return nil, err
	}
	t, err := rc.Transform(cs, rc.TextCS())
	if err != nil {
		return nil, err
	}
	src := carto.ShapePath(s)
	dst := carto.NewPath()
	dst.Rule = src.Rule
	for pts, closed := range src.Subpaths() {
		started := false
		for _, p := range pts {
			q, err := t.Apply(p)
			if err != nil {
				return nil, &carto.TransformError{Point: p, Err: err}
			}
			if q.IsNaN() {
				started = false
				continue
			}
			if started {
				dst.LineToPoint(q)
			} else {
				dst.MoveToPoint(q)
				started = true
			}
		}
		if closed && started {
			dst.Close()
		}
	}
	if dst.IsEmpty() {
		return nil, nil
	}
	return dst, nil
}

// ResolutionWindow returns the range of acceptable decimation resolutions
// for a target resolution, in geometry units.
func ResolutionWindow(target float64) (lo, hi float64) {
	return target / 2, target * 3 / 2
}

// AdjustResolution resets the rendering resolution of g to target, the
// midpoint of its window, when the current one falls outside the window.
// It reports whether the resolution changed.
func AdjustResolution(g Geometry, target float64) bool {
	if math.IsNaN(target) || target < 0 {
		target = 0
	}
	lo, hi := ResolutionWindow(target)
	if r := g.Resolution(); r >= lo && r <= hi {
		return false
	}
	g.SetRenderingResolution(target)
	return true
}
