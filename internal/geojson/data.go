// Package geojson loads vector data for the viewer from GeoJSON, WKT and
// CSV files.
package geojson

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/carto"
)

// ErrNoGeometry is returned when a file holds no usable coordinates.
var ErrNoGeometry = errors.New("geojson: no geometries found")

// Data is the content of one file, in longitude/latitude order.
type Data struct {
	Points []carto.Point
	// Labels holds the name of each point, or "".
	Labels []string
	Lines  [][]carto.Point
	// Rings are polygon rings without their closing vertex. Outer rings
	// wind counter-clockwise and holes clockwise, with y pointing up, so
	// that any fill rule draws holes.
	Rings  [][]carto.Point
	Bounds carto.Rect
}

func newData() *Data {
	return &Data{Bounds: carto.EmptyRect()}
}

// IsEmpty reports whether d holds no geometry.
func (d *Data) IsEmpty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Rings) == 0
}

func (d *Data) addPoint(p carto.Point, label string) {
	d.Points = append(d.Points, p)
	d.Labels = append(d.Labels, label)
	d.Bounds = d.Bounds.Extend(p)
}

func (d *Data) addLine(pts []carto.Point) {
	if len(pts) < 2 {
		return
	}
	d.Lines = append(d.Lines, pts)
	d.Bounds = d.Bounds.Union(carto.RectFromPoints(pts...))
}

// addPolygon adds the rings of one polygon, the first being the outer
// boundary.
func (d *Data) addPolygon(rings [][]carto.Point) {
	for i, ring := range rings {
		ring = openRing(ring)
		if len(ring) < 3 {
			continue
		}
		d.Rings = append(d.Rings, orient(ring, i == 0))
		d.Bounds = d.Bounds.Union(carto.RectFromPoints(ring...))
	}
}

// openRing drops the closing vertex repeating the first one.
func openRing(ring []carto.Point) []carto.Point {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}

// signedArea returns twice the signed area of ring, positive for
// counter-clockwise rings with y pointing up.
func signedArea(ring []carto.Point) float64 {
	var a float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// orient returns ring wound counter-clockwise when ccw is set and
// clockwise otherwise.
func orient(ring []carto.Point, ccw bool) []carto.Point {
	if (signedArea(ring) > 0) != ccw {
		ring = slices.Clone(ring)
		slices.Reverse(ring)
	}
	return ring
}

// Load reads path, choosing the format from its extension: .wkt for WKT,
// .csv for CSV and GeoJSON otherwise.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var d *Data
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt":
		var b []byte
		if b, err = io.ReadAll(f); err != nil {
			return nil, fmt.Errorf("geojson: read %s: %w", path, err)
		}
		d, err = ParseWKT(string(b))
	case ".csv":
		d, err = ReadCSV(f)
	default:
		d, err = Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("geojson: load %s: %w", path, err)
	}
	return d, nil
}
