package marks

import (
	"fmt"
	"math"

	"github.com/gogpu/carto"
)

// DefaultMinSpacing is the minimum distance between grid marks, in device
// pixels.
const DefaultMinSpacing = 16

// Grid is a regular raster geometry. Cell (col, row) covers
// [Origin.X+col*CellWidth, Origin.X+(col+1)*CellWidth) horizontally and
// likewise vertically; its mark sits at the cell centre.
type Grid struct {
	CS         *carto.CoordinateSystem
	Origin     carto.Point
	CellWidth  float64
	CellHeight float64
	Cols, Rows int
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.Cols * g.Rows }

// Band is one sampled quantity over a grid, stored row by row. NaN values
// are missing samples.
type Band struct {
	Name   string
	Units  string
	Values []float64
}

// GridMarks is a Source over one or two bands of a grid. A single band is
// drawn as unoriented marks scaled by the absolute sample value. Two bands
// are the u and v components of a vector field: amplitude is their
// magnitude and direction their angle.
type GridMarks struct {
	grid       Grid
	bands      []Band
	minSpacing float64
	stride     int
}

// NewGridMarks creates a grid source. It panics unless one or two bands
// are given, each with one value per cell, and both bands share the same
// units.
func NewGridMarks(grid Grid, bands ...Band) *GridMarks {
	if len(bands) < 1 || len(bands) > 2 {
		panic(fmt.Sprintf("marks: grid needs one or two bands, got %d", len(bands)))
	}
	for _, b := range bands {
		if len(b.Values) != grid.Len() {
			panic(fmt.Sprintf("marks: band %q has %d values, grid has %d cells", b.Name, len(b.Values), grid.Len()))
		}
	}
	if len(bands) == 2 && bands[0].Units != bands[1].Units {
		panic(fmt.Sprintf("marks: band units differ: %q is %s, %q is %s",
			bands[0].Name, bands[0].Units, bands[1].Name, bands[1].Units))
	}
	return &GridMarks{grid: grid, bands: bands, minSpacing: DefaultMinSpacing, stride: 1}
}

// Grid returns the grid geometry.
func (g *GridMarks) Grid() Grid { return g.grid }

// Units returns the units shared by the bands.
func (g *GridMarks) Units() string { return g.bands[0].Units }

// IsVector reports whether the source has u and v bands.
func (g *GridMarks) IsVector() bool { return len(g.bands) == 2 }

// SetMinSpacing sets the minimum mark spacing in device pixels.
func (g *GridMarks) SetMinSpacing(px float64) {
	if px > 0 {
		g.minSpacing = px
	}
}

// SetPixelSize implements Decimated. Only every Stride-th column and row
// stays visible so that marks are at least the minimum spacing apart.
func (g *GridMarks) SetPixelSize(px float64) {
	cell := math.Min(math.Abs(g.grid.CellWidth), math.Abs(g.grid.CellHeight))
	if !(px > 0) || math.IsInf(px, 0) || cell == 0 {
		g.stride = 1
		return
	}
	g.stride = max(1, int(math.Ceil(g.minSpacing*px/cell)))
}

// Stride returns the current cell decimation step.
func (g *GridMarks) Stride() int { return g.stride }

// Iterator implements Source.
func (g *GridMarks) Iterator() MarkIterator {
	return &gridIterator{g: g, i: -1}
}

// CoordinateSystem implements Source.
func (g *GridMarks) CoordinateSystem() *carto.CoordinateSystem { return g.grid.CS }

type gridIterator struct {
	BaseIterator
	g *GridMarks
	i int
}

func (it *gridIterator) Next() bool {
	if n := it.g.grid.Len(); it.i < n {
		it.i++
	}
	return it.i < it.g.grid.Len()
}

func (it *gridIterator) Seek(index int) {
	if n := it.g.grid.Len(); index < 0 || index >= n {
		panic(fmt.Sprintf("marks: grid index %d out of range [0, %d)", index, n))
	}
	it.i = index
}

func (it *gridIterator) Index() int { return it.i }

func (it *gridIterator) cell() (col, row int) {
	return it.i % it.g.grid.Cols, it.i / it.g.grid.Cols
}

func (it *gridIterator) components() (u, v float64) {
	u = it.g.bands[0].Values[it.i]
	if it.g.IsVector() {
		v = it.g.bands[1].Values[it.i]
	}
	return u, v
}

// Position returns the cell centre, or false for missing samples.
func (it *gridIterator) Position() (carto.Point, bool) {
	u, v := it.components()
	if math.IsNaN(u) || math.IsNaN(v) {
		return carto.Point{}, false
	}
	gr := it.g.grid
	col, row := it.cell()
	return carto.Point{
		X: gr.Origin.X + (float64(col)+0.5)*gr.CellWidth,
		Y: gr.Origin.Y + (float64(row)+0.5)*gr.CellHeight,
	}, true
}

func (it *gridIterator) Amplitude() float64 {
	u, v := it.components()
	return math.Hypot(u, v)
}

func (it *gridIterator) Direction() float64 {
	if !it.g.IsVector() {
		return 0
	}
	u, v := it.components()
	return math.Atan2(v, u)
}

func (it *gridIterator) Visible() bool {
	s := it.g.stride
	col, row := it.cell()
	return col%s == 0 && row%s == 0
}
