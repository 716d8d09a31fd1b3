package geojson

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gogpu/carto"
)

// wktList is one parenthesised level of a WKT body: either nested lists
// or a run of coordinates.
type wktList struct {
	lists  []wktList
	coords []carto.Point
}

// ParseWKT reads one or more WKT geometries separated by newlines or
// semicolons. POINT, LINESTRING, POLYGON, their MULTI forms and
// GEOMETRYCOLLECTION are recognised; Z and M ordinates are dropped.
func ParseWKT(s string) (*Data, error) {
	d := newData()
	p := &wktParser{s: s}
	for {
		p.skip(";")
		if p.eof() {
			break
		}
		if err := p.geometry(d); err != nil {
			return nil, err
		}
	}
	if d.IsEmpty() {
		return nil, ErrNoGeometry
	}
	return d, nil
}

type wktParser struct {
	s   string
	pos int
}

func (p *wktParser) eof() bool { return p.pos >= len(p.s) }

// skip advances over whitespace and any of the extra separators.
func (p *wktParser) skip(extra string) {
	for !p.eof() {
		c := rune(p.s[p.pos])
		if !unicode.IsSpace(c) && !strings.ContainsRune(extra, c) {
			return
		}
		p.pos++
	}
}

func (p *wktParser) errorf(format string, args ...any) error {
	return fmt.Errorf("geojson: wkt at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *wktParser) word() string {
	p.skip("")
	start := p.pos
	for !p.eof() && unicode.IsLetter(rune(p.s[p.pos])) {
		p.pos++
	}
	return strings.ToUpper(p.s[start:p.pos])
}

func (p *wktParser) peek() byte {
	p.skip("")
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *wktParser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *wktParser) geometry(d *Data) error {
	kind := p.word()
	if kind == "" {
		return p.errorf("expected geometry type")
	}
	switch dim := p.word(); dim {
	case "", "Z", "M", "ZM":
	case "EMPTY":
		return nil
	default:
		return p.errorf("unexpected %q", dim)
	}
	if kind == "GEOMETRYCOLLECTION" {
		if err := p.expect('('); err != nil {
			return err
		}
		for {
			if err := p.geometry(d); err != nil {
				return err
			}
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		return p.expect(')')
	}
	l, err := p.list()
	if err != nil {
		return err
	}
	switch kind {
	case "POINT":
		for _, pt := range l.coords {
			d.addPoint(pt, "")
		}
	case "MULTIPOINT":
		for _, pt := range l.coords {
			d.addPoint(pt, "")
		}
		for _, sub := range l.lists {
			for _, pt := range sub.coords {
				d.addPoint(pt, "")
			}
		}
	case "LINESTRING":
		d.addLine(l.coords)
	case "MULTILINESTRING":
		for _, sub := range l.lists {
			d.addLine(sub.coords)
		}
	case "POLYGON":
		d.addPolygon(l.rings())
	case "MULTIPOLYGON":
		for _, sub := range l.lists {
			d.addPolygon(sub.rings())
		}
	default:
		return p.errorf("unsupported geometry %s", kind)
	}
	return nil
}

func (l wktList) rings() [][]carto.Point {
	out := make([][]carto.Point, len(l.lists))
	for i, sub := range l.lists {
		out[i] = sub.coords
	}
	return out
}

func (p *wktParser) list() (wktList, error) {
	var l wktList
	if err := p.expect('('); err != nil {
		return l, err
	}
	for {
		if p.peek() == '(' {
			sub, err := p.list()
			if err != nil {
				return l, err
			}
			l.lists = append(l.lists, sub)
		} else {
			pt, err := p.coord()
			if err != nil {
				return l, err
			}
			l.coords = append(l.coords, pt)
		}
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	return l, p.expect(')')
}

// coord reads a whitespace separated tuple, keeping the first two
// ordinates.
func (p *wktParser) coord() (carto.Point, error) {
	var vals []float64
	for {
		p.skip("")
		start := p.pos
		for !p.eof() && strings.IndexByte("+-.0123456789eE", p.s[p.pos]) >= 0 {
			p.pos++
		}
		if start == p.pos {
			break
		}
		v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
		if err != nil {
			return carto.Point{}, p.errorf("bad number %q", p.s[start:p.pos])
		}
		vals = append(vals, v)
	}
	if len(vals) < 2 {
		return carto.Point{}, p.errorf("coordinate needs two ordinates")
	}
	return carto.Point{X: vals[0], Y: vals[1]}, nil
}
