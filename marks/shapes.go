package marks

import (
	"math"

	"github.com/gogpu/carto"
)

// Arrow returns an arrow ten points long pointing along +x, centred on the
// origin. It is the default shape of vector marks.
func Arrow() *carto.Path {
	return carto.Polygon(
		carto.Point{X: -5, Y: -0.75},
		carto.Point{X: 2, Y: -0.75},
		carto.Point{X: 2, Y: -2.5},
		carto.Point{X: 5, Y: 0},
		carto.Point{X: 2, Y: 2.5},
		carto.Point{X: 2, Y: 0.75},
		carto.Point{X: -5, Y: 0.75},
	)
}

// Circle returns a 16-sided polygon of radius r centred on the origin.
func Circle(r float64) *carto.Path {
	const n = 16
	pts := make([]carto.Point, n)
	for i := range n {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / n)
		pts[i] = carto.Point{X: r * cos, Y: r * sin}
	}
	return carto.Polygon(pts...)
}
