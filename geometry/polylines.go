package geometry

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/gogpu/carto"
)

// R-tree node fill, as used for chart feature indexes.
const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// Polylines is a Geometry made of line strings or polygon rings. Parts are
// indexed in an R-tree built on first query, so clipping a small window out
// of a large dataset only visits the parts near the window.
//
// Polylines is not safe for concurrent use; layers use it under the tree
// lock.
type Polylines struct {
	cs     *carto.CoordinateSystem
	parts  [][]carto.Point
	closed bool
	bounds carto.Rect

	index *rtreego.Rtree

	resolution float64
	decimated  [][]carto.Point
	shape      *carto.Path
}

// part is the R-tree entry for one line string or ring.
type part struct {
	i      int
	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (p *part) Bounds() rtreego.Rect { return p.bounds }

// NewPolylines creates a geometry of open line strings in cs.
func NewPolylines(cs *carto.CoordinateSystem, lines [][]carto.Point) *Polylines {
	return newPolylines(cs, lines, false)
}

// NewPolygons creates a geometry of closed rings in cs, filled with the
// even-odd rule so that inner rings form holes.
func NewPolygons(cs *carto.CoordinateSystem, rings [][]carto.Point) *Polylines {
	return newPolylines(cs, rings, true)
}

func newPolylines(cs *carto.CoordinateSystem, parts [][]carto.Point, closed bool) *Polylines {
	p := &Polylines{cs: cs, closed: closed, bounds: carto.EmptyRect()}
	for _, pts := range parts {
		if len(pts) == 0 {
			continue
		}
		p.parts = append(p.parts, pts)
		p.bounds = p.bounds.Union(carto.RectFromPoints(pts...))
	}
	return p
}

// Closed reports whether parts are polygon rings.
func (p *Polylines) Closed() bool { return p.closed }

// Parts returns the number of line strings or rings.
func (p *Polylines) Parts() int { return len(p.parts) }

// Part returns the vertices of part i at full resolution.
func (p *Polylines) Part(i int) []carto.Point { return p.parts[i] }

// BoundingBox implements Geometry.
func (p *Polylines) BoundingBox() carto.Rect { return p.bounds }

// CoordinateSystem implements Geometry.
func (p *Polylines) CoordinateSystem() *carto.CoordinateSystem { return p.cs }

// Resolution implements Geometry.
func (p *Polylines) Resolution() float64 { return p.resolution }

// SetRenderingResolution implements Geometry.
func (p *Polylines) SetRenderingResolution(res float64) {
	if res == p.resolution {
		return
	}
	carto.Logger().Debug("geometry: decimation resolution changed",
		"from", p.resolution, "to", res, "parts", len(p.parts))
	p.resolution = res
	p.decimated = nil
	p.shape = nil
}

// SetCoordinateSystem implements Geometry.
func (p *Polylines) SetCoordinateSystem(cs *carto.CoordinateSystem, f carto.TransformFactory) error {
	if carto.Equivalent(cs, p.cs) {
		return nil
	}
	t, err := f.CreateTransform(p.cs, cs)
	if err != nil {
		return err
	}
	parts := make([][]carto.Point, len(p.parts))
	for i, pts := range p.parts {
		out := make([]carto.Point, len(pts))
		for j, pt := range pts {
			q, err := t.Apply(pt)
			if err != nil {
				return &carto.TransformError{Point: pt, Err: err}
			}
			out[j] = q
		}
		parts[i] = out
	}
	*p = *newPolylines(cs, parts, p.closed)
	return nil
}

func rtreeRect(r carto.Rect) (rtreego.Rect, error) {
	return rtreego.NewRectFromPoints(rtreego.Point{r.MinX, r.MinY}, rtreego.Point{r.MaxX, r.MaxY})
}

func (p *Polylines) buildIndex() {
	if p.index != nil {
		return
	}
	objs := make([]rtreego.Spatial, 0, len(p.parts))
	for i, pts := range p.parts {
		b, err := rtreeRect(carto.RectFromPoints(pts...))
		if err != nil {
			continue
		}
		objs = append(objs, &part{i: i, bounds: b})
	}
	p.index = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, objs...)
}

// Query returns the indices of the parts whose bounds intersect r.
func (p *Polylines) Query(r carto.Rect) []int {
	if r.IsEmpty() || !p.bounds.Intersects(r) {
		return nil
	}
	p.buildIndex()
	q, err := rtreeRect(r)
	if err != nil {
		return nil
	}
	found := p.index.SearchIntersect(q)
	out := make([]int, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*part).i)
	}
	return out
}

// Clip implements Geometry. Line strings are cut where they leave r;
// rings are clipped to r as polygons.
func (p *Polylines) Clip(r carto.Rect, cs *carto.CoordinateSystem) (Geometry, error) {
	if !carto.Equivalent(cs, p.cs) {
		return nil, fmt.Errorf("geometry: clip in %s, data in %s: %w", cs, p.cs, carto.ErrNoTransformPath)
	}
	if r.ContainsRect(p.bounds) {
		return p, nil
	}
	var out [][]carto.Point
	for _, i := range p.Query(r) {
		pts := p.parts[i]
		if p.closed {
			if ring := carto.ClipPolygon(pts, r); len(ring) >= 3 {
				out = append(out, ring)
			}
			continue
		}
		out = append(out, clipLine(pts, r)...)
	}
	if len(out) == 0 {
		return nil, nil
	}
	c := newPolylines(p.cs, out, p.closed)
	c.resolution = p.resolution
	return c, nil
}

// Shape implements Geometry. The path is rebuilt only when the
// resolution changes.
func (p *Polylines) Shape() carto.Shape {
	if p.shape != nil {
		return p.shape
	}
	if p.decimated == nil {
		p.decimated = make([][]carto.Point, len(p.parts))
		for i, pts := range p.parts {
			p.decimated[i] = decimate(pts, p.resolution, p.closed)
		}
	}
	path := carto.NewPath()
	if p.closed {
		path.Rule = carto.FillEvenOdd
	}
	for _, pts := range p.decimated {
		if len(pts) == 0 {
			continue
		}
		path.MoveToPoint(pts[0])
		for _, pt := range pts[1:] {
			path.LineToPoint(pt)
		}
		if p.closed {
			path.Close()
		}
	}
	p.shape = path
	return path
}

// VertexCount returns the number of vertices kept at the current
// resolution.
func (p *Polylines) VertexCount() int {
	p.Shape()
	n := 0
	for _, pts := range p.decimated {
		n += len(pts)
	}
	return n
}
