package marks

import (
	"image"

	"github.com/gogpu/carto"
)

// MarkIterator is a cursor over a source of marks.
//
// A new iterator is positioned before the first mark. Accessors are only
// meaningful after Next or Seek placed the cursor on a valid mark.
// Iterators are not safe for concurrent use; a layer consumes one per
// rebuild.
type MarkIterator interface {
	// Next advances to the following mark and reports whether one exists.
	Next() bool
	// Seek positions the cursor on the mark with the given index. It
	// panics when index is out of range.
	Seek(index int)
	// Index returns a stable identifier of the current mark, usable with
	// Seek on any iterator of the same source.
	Index() int
	// Position returns the mark location in the source coordinate system,
	// or false when the mark has none.
	Position() (carto.Point, bool)

	// Amplitude scales the mark shape relative to the typical amplitude.
	Amplitude() float64
	// Direction is the mark orientation in radians, counter-clockwise from
	// the x axis of the source coordinate system.
	Direction() float64
	// Shape returns the mark shape, centred on the origin, or nil for the
	// layer default.
	Shape() carto.Shape
	// Label returns the text drawn next to the mark.
	Label() string
	// Icon returns an image drawn centred on the mark, or nil.
	Icon() image.Image
	// Visible reports whether the mark passes the source's own
	// decimation.
	Visible() bool
}

// BaseIterator supplies the default accessors. Iterators embed it and
// override Next, Seek, Index, Position and whatever else they know.
type BaseIterator struct{}

// Amplitude returns 1.
func (BaseIterator) Amplitude() float64 { return 1 }

// Direction returns 0.
func (BaseIterator) Direction() float64 { return 0 }

// Shape returns nil.
func (BaseIterator) Shape() carto.Shape { return nil }

// Label returns "".
func (BaseIterator) Label() string { return "" }

// Icon returns nil.
func (BaseIterator) Icon() image.Image { return nil }

// Visible returns true.
func (BaseIterator) Visible() bool { return true }

// Source creates iterators over a dataset of marks.
type Source interface {
	// Iterator returns a new iterator positioned before the first mark.
	Iterator() MarkIterator
	// CoordinateSystem returns the system mark positions are expressed in.
	CoordinateSystem() *carto.CoordinateSystem
}

// Decimated is implemented by sources that thin their marks by screen
// density. SetPixelSize receives the size of one device pixel in source
// units before each rebuild.
type Decimated interface {
	SetPixelSize(px float64)
}
