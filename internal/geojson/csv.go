package geojson

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/carto"
)

var (
	latNames  = []string{"lat", "latitude", "y"}
	lonNames  = []string{"lon", "lng", "long", "longitude", "x"}
	nameNames = []string{"name", "label", "title"}
)

// ReadCSV reads points from a CSV file with a header row naming the
// latitude and longitude columns. A name column, when present, labels
// the points. Rows that fail to parse are skipped.
func ReadCSV(r io.Reader) (*Data, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("geojson: csv header: %w", err)
	}
	lat, lon, name := column(header, latNames), column(header, lonNames), column(header, nameNames)
	if lat < 0 || lon < 0 {
		return nil, fmt.Errorf("geojson: csv needs latitude and longitude columns, have %v", header)
	}

	d := newData()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("geojson: csv: %w", err)
		}
		if lat >= len(rec) || lon >= len(rec) {
			continue
		}
		y, err1 := strconv.ParseFloat(strings.TrimSpace(rec[lat]), 64)
		x, err2 := strconv.ParseFloat(strings.TrimSpace(rec[lon]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		var label string
		if name >= 0 && name < len(rec) {
			label = rec[name]
		}
		d.addPoint(carto.Point{X: x, Y: y}, label)
	}
	if d.IsEmpty() {
		return nil, ErrNoGeometry
	}
	return d, nil
}

func column(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}
