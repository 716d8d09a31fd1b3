package geojson

import (
	"github.com/gogpu/carto"
	"github.com/gogpu/carto/geometry"
	"github.com/gogpu/carto/marks"
)

// LineGeometry returns the line strings of d, or nil when there are none.
func (d *Data) LineGeometry() *geometry.Polylines {
	if len(d.Lines) == 0 {
		return nil
	}
	return geometry.NewPolylines(carto.Geographic(), d.Lines)
}

// PolygonGeometry returns the polygon rings of d, or nil when there are
// none.
func (d *Data) PolygonGeometry() *geometry.Polylines {
	if len(d.Rings) == 0 {
		return nil
	}
	return geometry.NewPolygons(carto.Geographic(), d.Rings)
}

// Marks returns the points of d as a mark source, or nil when there are
// none.
func (d *Data) Marks() *marks.SliceMarks {
	if len(d.Points) == 0 {
		return nil
	}
	ms := make([]marks.Mark, len(d.Points))
	for i, p := range d.Points {
		ms[i] = marks.Mark{Position: p, Label: d.Labels[i]}
	}
	return marks.NewSliceMarks(carto.Geographic(), ms)
}
