package carto

import "iter"

// FillRule selects how the interior of a path is determined.
type FillRule uint8

// Fill rule constants.
const (
	// FillNonZero treats a point as inside when the winding number is non-zero.
	FillNonZero FillRule = iota
	// FillEvenOdd treats a point as inside when the winding number is odd.
	FillEvenOdd
)

// String returns the fill rule name.
func (r FillRule) String() string {
	switch r {
	case FillNonZero:
		return "NonZero"
	case FillEvenOdd:
		return "EvenOdd"
	default:
		return "Unknown"
	}
}

// pathVerb is a path construction command.
type pathVerb uint8

const (
	verbMoveTo pathVerb = iota
	verbLineTo
	verbClose
)

// Path is a sequence of polyline subpaths. Geographic data is made of
// straight segments, so Path carries no curve verbs; curved outlines (glyphs)
// are flattened before they reach a Path.
//
// The zero value is an empty path ready to use.
type Path struct {
	verbs  []pathVerb
	points []Point // one point per MoveTo/LineTo
	start  Point   // first point of the current subpath
	open   bool    // a subpath has been started and not closed

	// Rule is the fill rule used by Contains and by surfaces filling the path.
	Rule FillRule
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]pathVerb, 0, 16),
		points: make([]Point, 0, 16),
	}
}

// Reset clears the path for reuse, keeping its capacity.
func (p *Path) Reset() {
	p.verbs = p.verbs[:0]
	p.points = p.points[:0]
	p.open = false
	p.Rule = FillNonZero
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.MoveToPoint(Point{X: x, Y: y})
}

// MoveToPoint starts a new subpath at pt.
func (p *Path) MoveToPoint(pt Point) {
	p.verbs = append(p.verbs, verbMoveTo)
	p.points = append(p.points, pt)
	p.start = pt
	p.open = true
}

// LineTo adds a segment to (x, y).
// If no subpath is open, LineTo behaves like MoveTo.
func (p *Path) LineTo(x, y float64) {
	p.LineToPoint(Point{X: x, Y: y})
}

// LineToPoint adds a segment to pt.
func (p *Path) LineToPoint(pt Point) {
	if !p.open {
		p.MoveToPoint(pt)
		return
	}
	p.verbs = append(p.verbs, verbLineTo)
	p.points = append(p.points, pt)
}

// Close closes the current subpath.
func (p *Path) Close() {
	if !p.open {
		return
	}
	p.verbs = append(p.verbs, verbClose)
	p.open = false
}

// IsEmpty reports whether the path has no points.
func (p *Path) IsEmpty() bool {
	return len(p.points) == 0
}

// PointCount returns the number of points in the path.
func (p *Path) PointCount() int {
	return len(p.points)
}

// Subpaths iterates over the subpaths of p. The yielded slice aliases the
// path storage and must not be retained or modified.
func (p *Path) Subpaths() iter.Seq2[[]Point, bool] {
	return func(yield func([]Point, bool) bool) {
		first := -1
		pi := 0
		for _, v := range p.verbs {
			switch v {
			case verbMoveTo:
				if first >= 0 && !yield(p.points[first:pi], false) {
					return
				}
				first = pi
				pi++
			case verbLineTo:
				pi++
			case verbClose:
				if first >= 0 {
					if !yield(p.points[first:pi], true) {
						return
					}
					first = -1
				}
			}
		}
		if first >= 0 {
			yield(p.points[first:pi], false)
		}
	}
}

// Segments iterates over every segment of the path. Closing segments of
// closed subpaths are included; open subpaths are not implicitly closed.
func (p *Path) Segments() iter.Seq2[Point, Point] {
	return func(yield func(Point, Point) bool) {
		for pts, closed := range p.Subpaths() {
			for i := 1; i < len(pts); i++ {
				if !yield(pts[i-1], pts[i]) {
					return
				}
			}
			if closed && len(pts) > 2 {
				if !yield(pts[len(pts)-1], pts[0]) {
					return
				}
			}
		}
	}
}

// Transform returns a new path with every point transformed by m.
func (p *Path) Transform(m Affine) *Path {
	out := &Path{
		verbs:  append([]pathVerb(nil), p.verbs...),
		points: make([]Point, len(p.points)),
		start:  m.TransformPoint(p.start),
		open:   p.open,
		Rule:   p.Rule,
	}
	for i, pt := range p.points {
		out.points[i] = m.TransformPoint(pt)
	}
	return out
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	return p.Transform(Identity())
}

// AppendPath appends the path transformed by m to dst.
func (p *Path) AppendPath(dst *Path, m Affine) {
	for pts, closed := range p.Subpaths() {
		if len(pts) == 0 {
			continue
		}
		dst.MoveToPoint(m.TransformPoint(pts[0]))
		for _, pt := range pts[1:] {
			dst.LineToPoint(m.TransformPoint(pt))
		}
		if closed {
			dst.Close()
		}
	}
}

// Polygon builds a closed path from the given vertices.
func Polygon(pts ...Point) *Path {
	p := NewPath()
	if len(pts) == 0 {
		return p
	}
	p.MoveToPoint(pts[0])
	for _, pt := range pts[1:] {
		p.LineToPoint(pt)
	}
	p.Close()
	return p
}

// Polyline builds an open path from the given vertices.
func Polyline(pts ...Point) *Path {
	p := NewPath()
	if len(pts) == 0 {
		return p
	}
	p.MoveToPoint(pts[0])
	for _, pt := range pts[1:] {
		p.LineToPoint(pt)
	}
	return p
}
