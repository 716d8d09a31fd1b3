package marks

import "github.com/gogpu/carto"

// MarksOption configures a RenderedMarks layer during creation.
type MarksOption func(*marksOptions)

type marksOptions struct {
	typical   float64
	shape     carto.Shape
	labelSize float64
	labelGap  float64
	iconPool  int
}

func defaultMarksOptions() marksOptions {
	return marksOptions{
		labelSize: 10,
		labelGap:  2,
		iconPool:  64,
	}
}

// WithTypicalAmplitude sets the amplitude drawn at the shape's natural
// size. Defaults to the root mean square of the source amplitudes.
func WithTypicalAmplitude(a float64) MarksOption {
	return func(o *marksOptions) {
		if a > 0 {
			o.typical = a
		}
	}
}

// WithShape sets the shape of marks whose iterator returns none. Defaults
// to Arrow for vector grids and a circle of radius 3 otherwise.
func WithShape(s carto.Shape) MarksOption {
	return func(o *marksOptions) {
		o.shape = s
	}
}

// WithLabelSize sets the label text size in points. Defaults to 10.
func WithLabelSize(size float64) MarksOption {
	return func(o *marksOptions) {
		if size > 0 {
			o.labelSize = size
		}
	}
}

// WithIconPoolSize sets the number of distinct icon sizes whose boxes are
// shared. Defaults to 64.
func WithIconPoolSize(n int) MarksOption {
	return func(o *marksOptions) {
		if n > 0 {
			o.iconPool = n
		}
	}
}
