// Package label shapes label text into glyph runs.
//
// A Face combines HarfBuzz shaping from github.com/go-text/typesetting
// with glyph outlines from golang.org/x/image/font/sfnt. It implements
// carto.Labeler for layout and carto.GlyphSource for outlines, so any
// surface able to fill a path can draw the runs it produces.
//
// Label text is normalised to NFC before shaping; the normalised text and
// the size key an LRU cache of runs, so redrawing a mark layer does not
// reshape its labels.
//
//	r := carto.NewRenderer(carto.Geographic(), carto.WithLabeler(label.DefaultFace()))
package label
