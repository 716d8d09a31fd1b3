package marks

import (
	"fmt"
	"image"

	"github.com/gogpu/carto"
)

// Mark is one point feature of a SliceMarks source.
type Mark struct {
	Position carto.Point
	// Amplitude scales the shape; 0 means 1.
	Amplitude float64
	Direction float64
	Shape     carto.Shape
	Label     string
	Icon      image.Image
	Hidden    bool
}

// SliceMarks is a Source over an in-memory slice.
type SliceMarks struct {
	cs    *carto.CoordinateSystem
	marks []Mark
}

// NewSliceMarks creates a source over marks in cs. The slice is not
// copied.
func NewSliceMarks(cs *carto.CoordinateSystem, marks []Mark) *SliceMarks {
	return &SliceMarks{cs: cs, marks: marks}
}

// Iterator implements Source.
func (s *SliceMarks) Iterator() MarkIterator {
	return &sliceIterator{marks: s.marks, i: -1}
}

// CoordinateSystem implements Source.
func (s *SliceMarks) CoordinateSystem() *carto.CoordinateSystem { return s.cs }

// Len returns the number of marks.
func (s *SliceMarks) Len() int { return len(s.marks) }

type sliceIterator struct {
	BaseIterator
	marks []Mark
	i     int
}

func (it *sliceIterator) Next() bool {
	if it.i < len(it.marks) {
		it.i++
	}
	return it.i < len(it.marks)
}

func (it *sliceIterator) Seek(index int) {
	if index < 0 || index >= len(it.marks) {
		panic(fmt.Sprintf("marks: index %d out of range [0, %d)", index, len(it.marks)))
	}
	it.i = index
}

func (it *sliceIterator) Index() int { return it.i }

func (it *sliceIterator) Position() (carto.Point, bool) {
	p := it.marks[it.i].Position
	return p, !p.IsNaN()
}

func (it *sliceIterator) Amplitude() float64 {
	if a := it.marks[it.i].Amplitude; a != 0 {
		return a
	}
	return 1
}

func (it *sliceIterator) Direction() float64 { return it.marks[it.i].Direction }
func (it *sliceIterator) Shape() carto.Shape { return it.marks[it.i].Shape }
func (it *sliceIterator) Label() string      { return it.marks[it.i].Label }
func (it *sliceIterator) Icon() image.Image  { return it.marks[it.i].Icon }
func (it *sliceIterator) Visible() bool      { return !it.marks[it.i].Hidden }
