package label

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/gogpu/carto"
	"github.com/gogpu/carto/internal/cache"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidSize is returned by Layout for sizes that are not positive
// finite numbers.
var ErrInvalidSize = errors.New("label: invalid text size")

type layoutKey struct {
	text string
	size float64
}

type outlineKey struct {
	id   carto.GlyphID
	size float64
}

// Face shapes text and provides glyph outlines for one font.
//
// A Face is safe for concurrent use. Runs returned by Layout are shared
// through the layout cache and must not be modified.
type Face struct {
	name      string
	shaped    *font.Font
	outline   *sfnt.Font
	lang      language.Language
	tolerance float64

	// mu guards buf, which sfnt needs for every glyph load.
	mu  sync.Mutex
	buf sfnt.Buffer

	shapers  sync.Pool
	layouts  *cache.Cache[layoutKey, *carto.GlyphRun]
	outlines *cache.Cache[outlineKey, *carto.Path]
}

var (
	_ carto.Labeler     = (*Face)(nil)
	_ carto.GlyphSource = (*Face)(nil)
)

// Parse creates a face from TrueType or OpenType data.
func Parse(data []byte, opts ...FaceOption) (*Face, error) {
	o := defaultFaceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	gt, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("label: failed to parse font: %w", err)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("label: failed to parse font outlines: %w", err)
	}
	f := &Face{
		shaped:    gt.Font,
		outline:   sf,
		lang:      language.NewLanguage(o.language),
		tolerance: o.tolerance,
		shapers: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		layouts:  cache.New[layoutKey, *carto.GlyphRun](o.layoutCacheSize),
		outlines: cache.New[outlineKey, *carto.Path](o.outlineCacheSize),
	}
	if name, err := sf.Name(&f.buf, sfnt.NameIDFamily); err == nil {
		f.name = name
	}
	return f, nil
}

var defaultFace = sync.OnceValue(func() *Face {
	f, err := Parse(goregular.TTF)
	if err != nil {
		panic("label: embedded Go Regular font: " + err.Error())
	}
	return f
})

// DefaultFace returns the shared Go Regular face.
func DefaultFace() *Face { return defaultFace() }

// Name returns the font family name.
func (f *Face) Name() string { return f.name }

// Layout implements carto.Labeler. The text is normalised to NFC and
// shaped left to right at size points. Empty text yields a nil run.
func (f *Face) Layout(text string, size float64) (*carto.GlyphRun, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	text = norm.NFC.String(text)
	if text == "" {
		return nil, nil
	}
	return f.layouts.GetOrCreate(layoutKey{text: text, size: size}, func() *carto.GlyphRun {
		return f.shape(text, size)
	}), nil
}

func (f *Face) shape(text string, size float64) *carto.GlyphRun {
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f.shaped),
		Size:      floatToFixed(size),
		Script:    detectScript(runes),
		Language:  f.lang,
	}
	hb := f.shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	f.shapers.Put(hb)

	run := &carto.GlyphRun{
		Source: f,
		Size:   size,
		Glyphs: make([]carto.Glyph, len(out.Glyphs)),
		Text:   text,
	}
	var x float64
	for i, g := range out.Glyphs {
		run.Glyphs[i] = carto.Glyph{
			ID: carto.GlyphID(g.GlyphID),
			X:  x + fixedToFloat(g.XOffset),
			Y:  -fixedToFloat(g.YOffset),
		}
		x += fixedToFloat(g.Advance)
	}
	run.Advance = x
	run.Ascent, run.Descent = f.metrics(size)
	carto.Logger().Debug("label: shaped run", "text", text, "size", size, "glyphs", len(run.Glyphs))
	return run
}

// metrics returns the ascent and descent at size, both positive.
func (f *Face) metrics(size float64) (ascent, descent float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.outline.Metrics(&f.buf, floatToFixed(size), xfont.HintingNone)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// AppendGlyph implements carto.GlyphSource. Curves are flattened to the
// face tolerance; glyphs without an outline append nothing.
func (f *Face) AppendGlyph(p *carto.Path, id carto.GlyphID, size float64, m carto.Affine) {
	outline := f.outlines.GetOrCreate(outlineKey{id: id, size: size}, func() *carto.Path {
		return f.loadOutline(id, size)
	})
	if outline != nil {
		outline.AppendPath(p, m)
	}
}

// loadOutline returns the outline of id at size in y-down glyph space,
// or nil when the glyph has none.
func (f *Face) loadOutline(id carto.GlyphID, size float64) *carto.Path {
	f.mu.Lock()
	segs, err := f.outline.LoadGlyph(&f.buf, sfnt.GlyphIndex(id), floatToFixed(size), nil)
	f.mu.Unlock()
	if err != nil || len(segs) == 0 {
		return nil
	}
	fl := flattener{path: carto.NewPath(), tolerance: f.tolerance}
	started := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				fl.path.Close()
			}
			fl.moveTo(point(s.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			fl.lineTo(point(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			fl.quadTo(point(s.Args[0]), point(s.Args[1]))
		case sfnt.SegmentOpCubeTo:
			fl.cubeTo(point(s.Args[0]), point(s.Args[1]), point(s.Args[2]))
		}
	}
	if started {
		fl.path.Close()
	}
	return fl.path
}

// CacheStats returns the layout cache statistics.
func (f *Face) CacheStats() cache.Stats { return f.layouts.Stats() }

func point(p fixed.Point26_6) carto.Point {
	return carto.Point{X: fixedToFloat(p.X), Y: fixedToFloat(p.Y)}
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
