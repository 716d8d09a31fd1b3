package stroke

import (
	"math"

	"github.com/gogpu/carto"
)

// DefaultMiterLimit is the ratio of miter length to stroke width above
// which a miter join is drawn as a bevel.
const DefaultMiterLimit = 4.0

func dot(a, b carto.Point) float64 { return a.X*b.X + a.Y*b.Y }

func length(v carto.Point) float64 { return math.Hypot(v.X, v.Y) }

// perp rotates v by 90 degrees counter-clockwise.
func perp(v carto.Point) carto.Point { return carto.Point{X: -v.Y, Y: v.X} }

func neg(v carto.Point) carto.Point { return carto.Point{X: -v.X, Y: -v.Y} }

// Expander converts stroked paths to fill outlines. An Expander reuses its
// buffers and is not safe for concurrent use.
type Expander struct {
	style      carto.Stroke
	miterLimit float64

	// tolerance bounds the distance between round joins and their
	// polyline approximation.
	tolerance float64

	forward  []carto.Point
	backward []carto.Point
	output   *carto.Path

	startPt   carto.Point
	startNorm carto.Point
	startTan  carto.Point
	lastPt    carto.Point
	lastTan   carto.Point
	lastNorm  carto.Point

	joinThresh float64
}

// NewExpander creates an expander for style.
func NewExpander(style carto.Stroke) *Expander {
	return &Expander{
		style:      style,
		miterLimit: DefaultMiterLimit,
		tolerance:  0.25,
	}
}

// SetTolerance sets the arc flattening tolerance. Non-positive values are
// ignored.
func (e *Expander) SetTolerance(tolerance float64) {
	if tolerance > 0 {
		e.tolerance = tolerance
	}
}

// SetMiterLimit sets the miter limit. Values below 1 are ignored.
func (e *Expander) SetMiterLimit(limit float64) {
	if limit >= 1 {
		e.miterLimit = limit
	}
}

// Style returns the stroke being expanded.
func (e *Expander) Style() carto.Stroke { return e.style }

// Expand returns the fill outline of p stroked with the expander style.
// The result uses the non-zero fill rule.
func (e *Expander) Expand(p *carto.Path) *carto.Path {
	e.output = carto.NewPath()
	e.output.Rule = carto.FillNonZero
	if p == nil || e.style.Width <= 0 {
		return e.output
	}
	e.joinThresh = 2.0 * e.tolerance / e.style.Width
	for pts, closed := range p.Subpaths() {
		e.reset()
		e.startPt = pts[0]
		e.lastPt = pts[0]
		for _, pt := range pts[1:] {
			e.lineTo(pt)
		}
		if closed {
			e.lineTo(e.startPt)
			e.finishClosed()
			continue
		}
		e.finish()
	}
	return e.output
}

func (e *Expander) reset() {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
	e.startNorm = carto.Point{}
	e.startTan = carto.Point{}
	e.lastTan = carto.Point{}
	e.lastNorm = carto.Point{}
}

func (e *Expander) lineTo(pt carto.Point) {
	if pt == e.lastPt {
		return
	}
	tangent := pt.Sub(e.lastPt)
	e.doJoin(tangent)
	e.lastTan = tangent
	e.doLine(tangent, pt)
}

// normal returns the normal of tangent scaled to half the stroke width.
func (e *Expander) normal(tangent carto.Point) carto.Point {
	return perp(tangent).Mul(0.5 * e.style.Width / length(tangent))
}

func (e *Expander) doJoin(tan0 carto.Point) {
	norm := e.normal(tan0)
	p0 := e.lastPt
	if len(e.forward) == 0 {
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
		e.startTan = tan0
		e.startNorm = norm
		return
	}
	e.joinWithPrevious(p0, norm, tan0)
}

func (e *Expander) joinWithPrevious(p0, norm, tan0 carto.Point) {
	ab := e.lastTan
	cd := tan0
	cross := ab.Cross(cd)
	d := dot(ab, cd)
	hypot := math.Hypot(cross, d)

	// Nearly straight: connect both sides without a join.
	if d > 0.0 && math.Abs(cross) < hypot*e.joinThresh {
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
		return
	}

	switch e.style.Join {
	case carto.JoinBevel:
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
	case carto.JoinRound:
		e.roundJoinAt(p0, norm, cross, d)
	default:
		if 2.0*hypot < (hypot+d)*e.miterLimit*e.miterLimit {
			e.miterPoint(p0, norm, ab, cd, cross)
		}
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
	}
}

func (e *Expander) miterPoint(p0, norm, ab, cd carto.Point, cross float64) {
	lastNorm := e.normal(ab)
	switch {
	case cross > 0.0:
		fpLast := p0.Sub(lastNorm)
		fpThis := p0.Sub(norm)
		h := ab.Cross(fpThis.Sub(fpLast)) / cross
		e.forward = append(e.forward, fpThis.Sub(cd.Mul(h)))
		e.backward = append(e.backward, p0)
	case cross < 0.0:
		fpLast := p0.Add(lastNorm)
		fpThis := p0.Add(norm)
		h := ab.Cross(fpThis.Sub(fpLast)) / cross
		e.backward = append(e.backward, fpThis.Sub(cd.Mul(h)))
		e.forward = append(e.forward, p0)
	}
}

func (e *Expander) roundJoinAt(p0, norm carto.Point, cross, d float64) {
	lastNorm := e.normal(e.lastTan)
	angle := math.Atan2(cross, d)
	if angle > 0.0 {
		e.backward = append(e.backward, p0.Add(norm))
		e.forward = e.arc(e.forward, p0, neg(lastNorm), angle)
	} else {
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = e.arc(e.backward, p0, lastNorm, angle)
	}
}

func (e *Expander) doLine(tangent, p1 carto.Point) {
	norm := e.normal(tangent)
	e.forward = append(e.forward, p1.Sub(norm))
	e.backward = append(e.backward, p1.Add(norm))
	e.lastPt = p1
	e.lastNorm = norm
}

// arc appends the polyline approximation of the arc around center
// starting at center+norm and sweeping angle radians.
func (e *Expander) arc(dst []carto.Point, center, norm carto.Point, angle float64) []carto.Point {
	radius := length(norm)
	if radius == 0 {
		return dst
	}
	// Segment count bounding the sagitta by the tolerance.
	step := 2 * math.Acos(math.Max(-1, 1-e.tolerance/radius))
	if step <= 0 || math.IsNaN(step) {
		step = math.Pi / 8
	}
	n := max(1, int(math.Ceil(math.Abs(angle)/step)))
	a0 := math.Atan2(norm.Y, norm.X)
	for i := 1; i <= n; i++ {
		a := a0 + angle*float64(i)/float64(n)
		dst = append(dst, carto.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)})
	}
	return dst
}

// finish closes an open subpath with its caps.
func (e *Expander) finish() {
	if len(e.forward) == 0 {
		// A lone point still gets round and square caps.
		if e.style.Cap != carto.CapButt {
			norm := carto.Point{X: 0, Y: e.style.Width / 2}
			e.output.MoveToPoint(e.startPt.Sub(norm))
			e.cap(e.startPt, neg(norm))
			e.cap(e.startPt, norm)
			e.output.Close()
		}
		return
	}
	e.output.MoveToPoint(e.forward[0])
	for _, pt := range e.forward[1:] {
		e.output.LineToPoint(pt)
	}
	e.cap(e.lastPt, neg(e.lastNorm))
	for i := len(e.backward) - 1; i >= 0; i-- {
		e.output.LineToPoint(e.backward[i])
	}
	e.cap(e.startPt, e.startNorm)
	e.output.Close()
}

// finishClosed emits the two rings of a closed subpath.
func (e *Expander) finishClosed() {
	if len(e.forward) == 0 {
		return
	}
	e.doJoin(e.startTan)
	e.output.MoveToPoint(e.forward[0])
	for _, pt := range e.forward[1:] {
		e.output.LineToPoint(pt)
	}
	e.output.Close()
	last := len(e.backward) - 1
	e.output.MoveToPoint(e.backward[last])
	for i := last - 1; i >= 0; i-- {
		e.output.LineToPoint(e.backward[i])
	}
	e.output.Close()
}

// cap connects center+norm to center-norm around the end of a subpath.
// norm points towards the side the outline is coming from.
func (e *Expander) cap(center, norm carto.Point) {
	switch e.style.Cap {
	case carto.CapRound:
		var pts []carto.Point
		for _, pt := range e.arc(pts, center, norm, math.Pi) {
			e.output.LineToPoint(pt)
		}
	case carto.CapSquare:
		// Corners of the square in the frame (norm, perp(norm)).
		e.output.LineToPoint(frame(center, norm, 1, 1))
		e.output.LineToPoint(frame(center, norm, -1, 1))
		e.output.LineToPoint(frame(center, norm, -1, 0))
	default:
		e.output.LineToPoint(center.Sub(norm))
	}
}

func frame(center, norm carto.Point, x, y float64) carto.Point {
	return carto.Point{
		X: norm.X*x - norm.Y*y + center.X,
		Y: norm.Y*x + norm.X*y + center.Y,
	}
}
