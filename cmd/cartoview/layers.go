package main

import (
	"math"
	"path/filepath"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/geometry"
	"github.com/gogpu/carto/internal/geojson"
	"github.com/gogpu/carto/marks"
)

// loadLayers builds one layer per kind of geometry in each file, or the
// demonstration layers when no file is given. It returns the union of the
// data bounds.
func loadLayers(paths []string) ([]carto.Layer, carto.Rect, error) {
	if len(paths) == 0 {
		return demoLayers()
	}
	var layers []carto.Layer
	bounds := carto.EmptyRect()
	for i, path := range paths {
		d, err := geojson.Load(path)
		if err != nil {
			return nil, bounds, err
		}
		name := filepath.Base(path)
		z := float64(i * 3)
		if g := d.PolygonGeometry(); g != nil {
			l := geometry.NewRenderedGeometries(name+" polygons", g, geometry.WithFill(true))
			l.SetZOrder(z)
			layers = append(layers, l)
		}
		if g := d.LineGeometry(); g != nil {
			l := geometry.NewRenderedGeometries(name+" lines", g)
			l.SetZOrder(z + 1)
			layers = append(layers, l)
		}
		if src := d.Marks(); src != nil {
			l := marks.NewRenderedMarks(name+" points", src)
			l.SetZOrder(z + 2)
			layers = append(layers, l)
		}
		bounds = bounds.Union(d.Bounds)
	}
	return layers, bounds, nil
}

const demoOutline = `POLYGON ((-10 36, 30 36, 30 60, -10 60, -10 36), (8 46, 12 46, 12 50, 8 50, 8 46))
POINT (2.35 48.85)`

// demoLayers returns a cyclone shaped wind field over western Europe with
// isobars and an outline.
func demoLayers() ([]carto.Layer, carto.Rect, error) {
	d, err := geojson.ParseWKT(demoOutline)
	if err != nil {
		return nil, carto.EmptyRect(), err
	}
	d.Labels[0] = "Paris"

	const cols, rows = 40, 24
	grid := marks.Grid{
		CS:         carto.Geographic(),
		Origin:     carto.Point{X: -10, Y: 36},
		CellWidth:  1,
		CellHeight: 1,
		Cols:       cols,
		Rows:       rows,
	}
	centre := carto.Point{X: 10, Y: 48}
	u := make([]float64, grid.Len())
	v := make([]float64, grid.Len())
	for row := range rows {
		for col := range cols {
			x := grid.Origin.X + (float64(col)+0.5)*grid.CellWidth - centre.X
			y := grid.Origin.Y + (float64(row)+0.5)*grid.CellHeight - centre.Y
			r := math.Hypot(x, y)
			speed := 20 * r / (1 + r*r/64)
			i := row*cols + col
			if r == 0 {
				continue
			}
			u[i], v[i] = -speed*y/r, speed*x/r
		}
	}
	wind := marks.NewGridMarks(grid,
		marks.Band{Name: "u", Units: "m/s", Values: u},
		marks.Band{Name: "v", Units: "m/s", Values: v})

	var isobars []geometry.Isoline
	for i := 1; i <= 4; i++ {
		radius := float64(i) * 3
		ring := make([]carto.Point, 48)
		for j := range ring {
			a := 2 * math.Pi * float64(j) / float64(len(ring))
			ring[j] = carto.Point{X: centre.X + radius*math.Cos(a), Y: centre.Y + radius*math.Sin(a)}
		}
		isobars = append(isobars, geometry.Isoline{
			Value:    980 + float64(i)*8,
			Geometry: geometry.NewPolygons(carto.Geographic(), [][]carto.Point{ring}),
		})
	}

	outline := geometry.NewRenderedGeometries("outline", d.PolygonGeometry())
	isolines := geometry.NewRenderedIsolines("isobars", carto.Geographic(), isobars)
	isolines.SetZOrder(1)
	arrows := marks.NewRenderedMarks("wind", wind)
	arrows.SetZOrder(2)
	cities := marks.NewRenderedMarks("cities", d.Marks())
	cities.SetZOrder(3)
	return []carto.Layer{outline, isolines, arrows, cities}, d.Bounds, nil
}
