package surface

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/carto"
)

// Braille cells hold 2x4 dots.
const (
	brailleDotsX = 2
	brailleDotsY = 4
	brailleBase  = 0x2800
)

// brailleBits maps a dot position (column, row) within a cell to its bit
// in the braille code point.
var brailleBits = [brailleDotsX][brailleDotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// BrailleSurface renders to a grid of terminal cells, each cell showing
// 2x4 dots as a Unicode braille character. A device pixel is one dot.
//
// Fills are computed per dot with the path fill rule; strokes are one dot
// wide. Glyph runs are written as plain text over the dots.
type BrailleSurface struct {
	state

	cols, rows int
	dots       [][]uint8
	colors     [][]color.Color
	text       [][]rune
}

var _ carto.Surface = (*BrailleSurface)(nil)

// NewBrailleSurface creates a surface of cols x rows terminal cells.
func NewBrailleSurface(cols, rows int, opts ...SurfaceOption) *BrailleSurface {
	o := buildOptions(cols, rows, opts)
	s := &BrailleSurface{
		state: newState(float64(o.Width*brailleDotsX), float64(o.Height*brailleDotsY)),
		cols:  o.Width,
		rows:  o.Height,
	}
	s.dots = make([][]uint8, s.rows)
	s.colors = make([][]color.Color, s.rows)
	s.text = make([][]rune, s.rows)
	for y := range s.rows {
		s.dots[y] = make([]uint8, s.cols)
		s.colors[y] = make([]color.Color, s.cols)
		s.text[y] = make([]rune, s.cols)
	}
	return s
}

// Cols returns the width in cells.
func (s *BrailleSurface) Cols() int { return s.cols }

// Rows returns the height in cells.
func (s *BrailleSurface) Rows() int { return s.rows }

// Clear removes every dot and label.
func (s *BrailleSurface) Clear() {
	for y := range s.rows {
		clear(s.dots[y])
		clear(s.colors[y])
		clear(s.text[y])
	}
}

// Dot reports whether the dot at device pixel (x, y) is set.
func (s *BrailleSurface) Dot(x, y int) bool {
	if x < 0 || y < 0 || x >= s.cols*brailleDotsX || y >= s.rows*brailleDotsY {
		return false
	}
	return s.dots[y/brailleDotsY][x/brailleDotsX]&brailleBits[x%brailleDotsX][y%brailleDotsY] != 0
}

// set turns on the dot at (x, y) if it lies inside the clip.
func (s *BrailleSurface) set(x, y int) {
	fx, fy := float64(x)+0.5, float64(y)+0.5
	if !s.clip.ContainsPoint(carto.Point{X: fx, Y: fy}) {
		return
	}
	cx, cy := x/brailleDotsX, y/brailleDotsY
	s.dots[cy][cx] |= brailleBits[x%brailleDotsX][y%brailleDotsY]
	s.colors[cy][cx] = s.paint
}

// Fill implements carto.Surface.
func (s *BrailleSurface) Fill(shape carto.Shape) {
	if shape == nil {
		return
	}
	s.fillPath(s.devicePath(shape))
}

func (s *BrailleSurface) fillPath(p *carto.Path) {
	if p.IsEmpty() {
		return
	}
	r := s.pixelRect(p.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if p.Contains(carto.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}) {
				s.set(x, y)
			}
		}
	}
}

// Draw implements carto.Surface. Outlines are traced one dot wide
// whatever the stroke width.
func (s *BrailleSurface) Draw(shape carto.Shape) {
	if shape == nil {
		return
	}
	for a, b := range s.devicePath(shape).Segments() {
		if a, b, ok := carto.ClipSegment(a, b, s.clip); ok {
			s.line(int(a.X), int(a.Y), int(b.X), int(b.Y))
		}
	}
}

// line draws a Bresenham line between two dots.
func (s *BrailleSurface) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		s.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawImage implements carto.Surface. A dot is set where the image pixel
// mapped to its centre is at least half opaque.
func (s *BrailleSurface) DrawImage(img image.Image, m carto.Affine) {
	if img == nil {
		return
	}
	dm := s.transform.Multiply(m)
	inv, err := dm.Invert()
	if err != nil {
		return
	}
	ib := img.Bounds()
	r := s.pixelRect(dm.TransformRect(carto.Rect{
		MinX: float64(ib.Min.X), MinY: float64(ib.Min.Y),
		MaxX: float64(ib.Max.X), MaxY: float64(ib.Max.Y),
	}))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := inv.TransformPoint(carto.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			ip := image.Point{X: int(p.X), Y: int(p.Y)}
			if !ip.In(ib) {
				continue
			}
			if _, _, _, a := img.At(ip.X, ip.Y).RGBA(); a >= 0x8000 {
				s.set(x, y)
			}
		}
	}
}

// DrawGlyphs implements carto.Surface. The run text is written in the
// cell row holding the baseline, starting at the cell holding (x, y).
func (s *BrailleSurface) DrawGlyphs(run *carto.GlyphRun, x, y float64) {
	if run == nil || run.Text == "" {
		return
	}
	p := s.transform.TransformPoint(carto.Point{X: x, Y: y})
	if !s.clip.ContainsPoint(p) {
		return
	}
	cx, cy := int(p.X)/brailleDotsX, int(p.Y)/brailleDotsY
	for _, c := range run.Text {
		if cx >= s.cols {
			return
		}
		s.text[cy][cx] = c
		s.colors[cy][cx] = s.paint
		cx++
	}
}

// cell returns the character shown in a cell.
func (s *BrailleSurface) cell(x, y int) rune {
	if c := s.text[y][x]; c != 0 {
		return c
	}
	if m := s.dots[y][x]; m != 0 {
		return rune(brailleBase + int(m))
	}
	return ' '
}

// Lines returns the cells as plain text, one string per row.
func (s *BrailleSurface) Lines() []string {
	out := make([]string, s.rows)
	row := make([]rune, s.cols)
	for y := range s.rows {
		for x := range s.cols {
			row[x] = s.cell(x, y)
		}
		out[y] = string(row)
	}
	return out
}

// Render returns the cells as styled terminal text, each run of cells
// coloured with the paint that last touched it.
func (s *BrailleSurface) Render() string {
	var b strings.Builder
	var run []rune
	var runColor color.Color
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runColor == nil {
			b.WriteString(string(run))
		} else {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(carto.ColorOf(runColor).HexString()))
			b.WriteString(style.Render(string(run)))
		}
		run = run[:0]
	}
	for y := range s.rows {
		if y > 0 {
			flush()
			b.WriteByte('\n')
		}
		for x := range s.cols {
			c := s.colors[y][x]
			ch := s.cell(x, y)
			if ch == ' ' {
				c = nil
			}
			if c != runColor {
				flush()
				runColor = c
			}
			run = append(run, ch)
		}
	}
	flush()
	return b.String()
}
