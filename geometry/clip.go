package geometry

import (
	"math"

	"github.com/gogpu/carto"
)

// clipLine cuts a line string at the edges of r and returns the runs that
// lie inside.
func clipLine(pts []carto.Point, r carto.Rect) [][]carto.Point {
	if len(pts) == 1 {
		if r.ContainsPoint(pts[0]) {
			return [][]carto.Point{{pts[0]}}
		}
		return nil
	}
	var out [][]carto.Point
	var run []carto.Point
	for i := 1; i < len(pts); i++ {
		a, b, ok := carto.ClipSegment(pts[i-1], pts[i], r)
		if !ok {
			if len(run) > 0 {
				out = append(out, run)
				run = nil
			}
			continue
		}
		if len(run) == 0 || run[len(run)-1] != a {
			if len(run) > 0 {
				out = append(out, run)
			}
			run = []carto.Point{a}
		}
		run = append(run, b)
		if b != pts[i] {
			out = append(out, run)
			run = nil
		}
	}
	if len(run) > 0 {
		out = append(out, run)
	}
	return out
}

// decimate drops vertices closer than res to the last kept one. The last
// vertex of a line string is always kept; rings keep at least three.
func decimate(pts []carto.Point, res float64, closed bool) []carto.Point {
	if res <= 0 || math.IsNaN(res) || len(pts) <= 2 {
		return pts
	}
	out := make([]carto.Point, 0, len(pts))
	out = append(out, pts[0])
	last := pts[0]
	for _, p := range pts[1 : len(pts)-1] {
		if math.Abs(p.X-last.X) >= res || math.Abs(p.Y-last.Y) >= res {
			out = append(out, p)
			last = p
		}
	}
	out = append(out, pts[len(pts)-1])
	if closed && len(out) < 3 {
		return pts
	}
	return out
}
