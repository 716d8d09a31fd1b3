package carto

import "math"

// Bounds returns the bounding box of all points in the path.
// An empty path returns EmptyRect.
func (p *Path) Bounds() Rect {
	return RectFromPoints(p.points...)
}

// Area returns the signed area of the path using the shoelace formula.
// Every subpath is treated as closed. Positive values indicate clockwise
// winding in a y-down coordinate system.
func (p *Path) Area() float64 {
	var area float64
	for pts := range p.Subpaths() {
		n := len(pts)
		for i := range n {
			a, b := pts[i], pts[(i+1)%n]
			area += a.X*b.Y - b.X*a.Y
		}
	}
	return area / 2
}

// Winding returns the winding number of pt with respect to the path.
// Open subpaths are implicitly closed, as a fill would close them.
func (p *Path) Winding(pt Point) int {
	winding := 0
	for pts := range p.Subpaths() {
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := range n {
			winding += lineWinding(pts[i], pts[(i+1)%n], pt)
		}
	}
	return winding
}

// Contains reports whether pt is inside the path according to p.Rule.
func (p *Path) Contains(pt Point) bool {
	w := p.Winding(pt)
	if p.Rule == FillEvenOdd {
		return w%2 != 0
	}
	return w != 0
}

// IntersectsRect reports whether the filled interior or outline of the path
// touches r.
func (p *Path) IntersectsRect(r Rect) bool {
	if r.IsEmpty() || !p.Bounds().Intersects(r) {
		return false
	}
	for _, pt := range p.points {
		if r.ContainsPoint(pt) {
			return true
		}
	}
	if p.Contains(r.Center()) {
		return true
	}
	for pts := range p.Subpaths() {
		n := len(pts)
		for i := range n {
			if _, _, ok := ClipSegment(pts[i], pts[(i+1)%n], r); ok {
				return true
			}
		}
	}
	return false
}

// ContainsRect reports whether r lies entirely inside the path.
func (p *Path) ContainsRect(r Rect) bool {
	if r.IsEmpty() || !p.Bounds().ContainsRect(r) {
		return false
	}
	for _, c := range r.Corners() {
		if !p.Contains(c) {
			return false
		}
	}
	// A path edge crossing the interior of r means part of r is outside.
	inner := Rect{
		MinX: math.Nextafter(r.MinX, math.Inf(1)),
		MinY: math.Nextafter(r.MinY, math.Inf(1)),
		MaxX: math.Nextafter(r.MaxX, math.Inf(-1)),
		MaxY: math.Nextafter(r.MaxY, math.Inf(-1)),
	}
	for pts := range p.Subpaths() {
		n := len(pts)
		for i := range n {
			if _, _, ok := ClipSegment(pts[i], pts[(i+1)%n], inner); ok {
				return false
			}
		}
	}
	return true
}

// lineWinding returns the winding contribution of the edge p0-p1 for a
// horizontal ray cast from pt towards +X.
func lineWinding(p0, p1, pt Point) int {
	if p0.Y <= pt.Y {
		if p1.Y > pt.Y && isLeft(p0, p1, pt) > 0 {
			return 1
		}
	} else if p1.Y <= pt.Y && isLeft(p0, p1, pt) < 0 {
		return -1
	}
	return 0
}

// isLeft tests if pt is left (>0), on (=0), or right (<0) of the line p0-p1.
func isLeft(p0, p1, pt Point) float64 {
	return (p1.X-p0.X)*(pt.Y-p0.Y) - (pt.X-p0.X)*(p1.Y-p0.Y)
}

// ClipSegment clips the segment a-b to r using the Liang-Barsky algorithm.
// It returns the clipped endpoints and false when the segment lies
// entirely outside r.
func ClipSegment(a, b Point, r Rect) (Point, Point, bool) {
	if r.IsEmpty() {
		return a, b, false
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, a.X-r.MinX) || !clip(dx, r.MaxX-a.X) ||
		!clip(-dy, a.Y-r.MinY) || !clip(dy, r.MaxY-a.Y) {
		return a, b, false
	}
	ca := Point{X: a.X + t0*dx, Y: a.Y + t0*dy}
	cb := Point{X: a.X + t1*dx, Y: a.Y + t1*dy}
	return ca, cb, true
}

// edge is one side of a clipping rectangle.
type edge uint8

const (
	edgeLeft edge = iota
	edgeRight
	edgeBottom
	edgeTop
)

func (e edge) inside(p Point, r Rect) bool {
	switch e {
	case edgeLeft:
		return p.X >= r.MinX
	case edgeRight:
		return p.X <= r.MaxX
	case edgeBottom:
		return p.Y >= r.MinY
	default:
		return p.Y <= r.MaxY
	}
}

func (e edge) intersect(a, b Point, r Rect) Point {
	switch e {
	case edgeLeft, edgeRight:
		x := r.MinX
		if e == edgeRight {
			x = r.MaxX
		}
		t := (x - a.X) / (b.X - a.X)
		return Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
	default:
		y := r.MinY
		if e == edgeTop {
			y = r.MaxY
		}
		t := (y - a.Y) / (b.Y - a.Y)
		return Point{X: a.X + t*(b.X-a.X), Y: y}
	}
}

// ClipPolygon clips a closed ring to r, one rectangle edge at a time
// (Sutherland-Hodgman). The result may contain degenerate edges along r,
// which fill correctly. It returns nil when the ring lies outside r.
func ClipPolygon(pts []Point, r Rect) []Point {
	out := pts
	for e := edgeLeft; e <= edgeTop; e++ {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]Point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur, r):
				if !e.inside(prev, r) {
					out = append(out, e.intersect(prev, cur, r))
				}
				out = append(out, cur)
			case e.inside(prev, r):
				out = append(out, e.intersect(prev, cur, r))
			}
			prev = cur
		}
	}
	return out
}
