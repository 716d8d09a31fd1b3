package marks

import (
	"fmt"
	"image"

	"github.com/gogpu/carto"
)

// Compact array growth bounds.
const (
	minGrowth = 8
	maxGrowth = 2048
)

// growth returns the capacity added to an array of length n when it is
// full.
func growth(n int) int {
	return max(minGrowth, min(n, maxGrowth))
}

// appendGrow appends v to s, growing the capacity by growth(len(s)) when s
// is full.
func appendGrow[T any](s []T, v ...T) []T {
	if len(s)+len(v) > cap(s) {
		ns := make([]T, len(s), cap(s)+max(growth(len(s)), len(v)))
		copy(ns, s)
		s = ns
	}
	return append(s, v...)
}

// trim returns s with its capacity reduced to its length.
func trim[T any](s []T) []T {
	if cap(s) == len(s) {
		return s
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// reset clears s and keeps its capacity.
func reset[T any](s []T) []T {
	clear(s)
	return s[:0]
}

// recordSize is the number of float32 values per transform record.
const recordSize = 6

// batch holds the marks that survived culling, in parallel arrays indexed
// by position in the batch.
type batch struct {
	indices    []int32
	transforms []float32 // recordSize values per mark, see carto.Affine.Values
	shapes     []carto.Shape

	icons     []image.Image
	iconBoxes []*carto.Rect // shared by icons of one size, centred on the origin

	runs    []*carto.GlyphRun
	anchors []float32 // baseline origin x, y per mark

	// bounds is the text space extent of everything in the batch.
	bounds carto.Rect
}

// Len returns the number of marks in the batch.
func (b *batch) Len() int { return len(b.indices) }

// transform returns the text space transform record of mark i.
func (b *batch) transform(i int) carto.Affine {
	r := b.transforms[i*recordSize : (i+1)*recordSize]
	return carto.AffineFromValues([6]float64{
		float64(r[0]), float64(r[1]), float64(r[2]),
		float64(r[3]), float64(r[4]), float64(r[5]),
	})
}

func (b *batch) appendShape(index int, m carto.Affine, s carto.Shape) {
	v := m.Values()
	b.indices = appendGrow(b.indices, int32(index))
	b.transforms = appendGrow(b.transforms,
		float32(v[0]), float32(v[1]), float32(v[2]),
		float32(v[3]), float32(v[4]), float32(v[5]))
	b.shapes = appendGrow(b.shapes, s)
}

func (b *batch) appendIcon(img image.Image, box *carto.Rect) {
	b.icons = appendGrow(b.icons, img)
	b.iconBoxes = appendGrow(b.iconBoxes, box)
}

func (b *batch) appendGlyphs(run *carto.GlyphRun, x, y float64) {
	b.runs = appendGrow(b.runs, run)
	b.anchors = appendGrow(b.anchors, float32(x), float32(y))
}

// clear empties every array, keeping their capacity. The arrays are
// parallel, so they are always emptied together.
func (b *batch) clear() {
	b.indices = reset(b.indices)
	b.transforms = reset(b.transforms)
	b.shapes = reset(b.shapes)
	b.icons = reset(b.icons)
	b.iconBoxes = reset(b.iconBoxes)
	b.runs = reset(b.runs)
	b.anchors = reset(b.anchors)
	b.bounds = carto.EmptyRect()
}

// trim reduces every array to its exact size.
func (b *batch) trim() {
	b.indices = trim(b.indices)
	b.transforms = trim(b.transforms)
	b.shapes = trim(b.shapes)
	b.icons = trim(b.icons)
	b.iconBoxes = trim(b.iconBoxes)
	b.runs = trim(b.runs)
	b.anchors = trim(b.anchors)
}

// check panics when the parallel arrays are out of step.
func (b *batch) check() {
	n := len(b.indices)
	if len(b.transforms) != n*recordSize || len(b.shapes) != n ||
		len(b.icons) != n || len(b.iconBoxes) != n ||
		len(b.runs) != n || len(b.anchors) != 2*n {
		panic(fmt.Sprintf("marks: batch arrays out of step: %d indices, %d transform values, %d shapes, %d icons, %d boxes, %d runs, %d anchor values",
			n, len(b.transforms), len(b.shapes), len(b.icons), len(b.iconBoxes), len(b.runs), len(b.anchors)))
	}
}
