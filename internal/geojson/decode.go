package geojson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogpu/carto"
)

type object struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []object        `json:"geometries"`
	Geometry    *object         `json:"geometry"`
	Features    []object        `json:"features"`
	Properties  map[string]any  `json:"properties"`
}

// Decode reads a GeoJSON geometry, Feature or FeatureCollection. Point
// features take their label from the "name" property.
func Decode(r io.Reader) (*Data, error) {
	var root object
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("geojson: decode: %w", err)
	}
	d := newData()
	if err := d.walk(root, ""); err != nil {
		return nil, err
	}
	if d.IsEmpty() {
		return nil, ErrNoGeometry
	}
	return d, nil
}

func (d *Data) walk(o object, label string) error {
	switch o.Type {
	case "FeatureCollection":
		for _, f := range o.Features {
			if err := d.walk(f, ""); err != nil {
				return err
			}
		}
		return nil
	case "Feature":
		if o.Geometry == nil {
			return nil
		}
		name, _ := o.Properties["name"].(string)
		return d.walk(*o.Geometry, name)
	case "GeometryCollection":
		for _, g := range o.Geometries {
			if err := d.walk(g, label); err != nil {
				return err
			}
		}
		return nil
	case "Point":
		var c []float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		if p, ok := point(c); ok {
			d.addPoint(p, label)
		}
	case "MultiPoint":
		var c [][]float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		for _, p := range points(c) {
			d.addPoint(p, label)
		}
	case "LineString":
		var c [][]float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		d.addLine(points(c))
	case "MultiLineString":
		var c [][][]float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		for _, l := range c {
			d.addLine(points(l))
		}
	case "Polygon":
		var c [][][]float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		d.addPolygon(rings(c))
	case "MultiPolygon":
		var c [][][][]float64
		if err := d.coords(o, &c); err != nil {
			return err
		}
		for _, poly := range c {
			d.addPolygon(rings(poly))
		}
	}
	return nil
}

func (d *Data) coords(o object, v any) error {
	if len(o.Coordinates) == 0 {
		return nil
	}
	if err := json.Unmarshal(o.Coordinates, v); err != nil {
		return fmt.Errorf("geojson: %s coordinates: %w", o.Type, err)
	}
	return nil
}

// point converts a position; extra ordinates such as elevation are
// ignored.
func point(c []float64) (carto.Point, bool) {
	if len(c) < 2 {
		return carto.Point{}, false
	}
	return carto.Point{X: c[0], Y: c[1]}, true
}

func points(cs [][]float64) []carto.Point {
	out := make([]carto.Point, 0, len(cs))
	for _, c := range cs {
		if p, ok := point(c); ok {
			out = append(out, p)
		}
	}
	return out
}

func rings(cs [][][]float64) [][]carto.Point {
	out := make([][]carto.Point, len(cs))
	for i, r := range cs {
		out[i] = points(r)
	}
	return out
}
