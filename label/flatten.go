package label

import (
	"math"

	"github.com/gogpu/carto"
)

// flattener converts glyph curves into polyline path segments.
type flattener struct {
	path      *carto.Path
	tolerance float64
	current   carto.Point
}

func (f *flattener) moveTo(p carto.Point) {
	f.path.MoveToPoint(p)
	f.current = p
}

func (f *flattener) lineTo(p carto.Point) {
	f.path.LineToPoint(p)
	f.current = p
}

func (f *flattener) quadTo(c, p carto.Point) {
	f.quad(f.current, c, p, 0)
	f.current = p
}

func (f *flattener) cubeTo(c1, c2, p carto.Point) {
	f.cubic(f.current, c1, c2, p, 0)
	f.current = p
}

// maxDepth bounds subdivision for degenerate control points.
const maxDepth = 16

func (f *flattener) quad(p0, p1, p2 carto.Point, depth int) {
	if depth >= maxDepth || distanceToLine(p1, p0, p2) < f.tolerance {
		f.path.LineToPoint(p2)
		return
	}
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	q2 := lerp(q0, q1, 0.5)
	f.quad(p0, q0, q2, depth+1)
	f.quad(q2, q1, p2, depth+1)
}

func (f *flattener) cubic(p0, p1, p2, p3 carto.Point, depth int) {
	d := math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if depth >= maxDepth || d < f.tolerance {
		f.path.LineToPoint(p3)
		return
	}
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	q2 := lerp(p2, p3, 0.5)
	r0 := lerp(q0, q1, 0.5)
	r1 := lerp(q1, q2, 0.5)
	s := lerp(r0, r1, 0.5)
	f.cubic(p0, q0, r0, s, depth+1)
	f.cubic(s, r1, q2, p3, depth+1)
}

func lerp(a, b carto.Point, t float64) carto.Point {
	return carto.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// distanceToLine returns the distance from p to the segment ab.
func distanceToLine(p, a, b carto.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 < 1e-20 {
		return p.Distance(a)
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / l2
	switch {
	case t < 0:
		return p.Distance(a)
	case t > 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(t)))
}
