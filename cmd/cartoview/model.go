package main

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/surface"
)

const (
	headerHeight = 1
	footerHeight = 2

	// braille dots per terminal cell
	dotsX, dotsY = 2, 4

	panStep  = 0.1
	zoomStep = 1.25
)

// repaintMsg tells the model that the repaint queue has pending requests.
type repaintMsg struct{}

// wakeup forwards repaint requests to the program with at most one
// repaintMsg in flight.
type wakeup struct {
	pending atomic.Bool
	send    func(tea.Msg)
}

// notify is the queue wakeup. Send blocks until the program reads the
// message, so it runs on its own goroutine.
func (w *wakeup) notify() {
	if w.pending.CompareAndSwap(false, true) {
		go w.send(repaintMsg{})
	}
}

// received rearms notify. It runs before the queue is drained so that a
// request posted during the paint sends a new message.
func (w *wakeup) received() { w.pending.Store(false) }

type model struct {
	r       *carto.Renderer
	backend string
	data    carto.Rect

	s     *surface.BrailleSurface
	frame string
	wake  *wakeup

	keys keyMap
	help help.Model

	width, height int
	status        string
	err           error
	tooltip       string
}

func newModel(r *carto.Renderer, backend string, data carto.Rect) (*model, error) {
	b, err := surface.Lookup(backend)
	if err != nil {
		return nil, err
	}
	if b.Kind != surface.Terminal {
		return nil, fmt.Errorf("surface %q is a %v backend, not a terminal one", backend, b.Kind)
	}
	return &model{
		r:       r,
		backend: backend,
		data:    data,
		wake:    &wakeup{},
		keys:    defaultKeyMap(),
		help:    help.New(),
		status:  "cartoview ready",
	}, nil
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case repaintMsg:
		m.wake.received()
		m.repaint()
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.pan(0, 1)
		case key.Matches(msg, m.keys.Down):
			m.pan(0, -1)
		case key.Matches(msg, m.keys.Left):
			m.pan(1, 0)
		case key.Matches(msg, m.keys.Right):
			m.pan(-1, 0)
		case key.Matches(msg, m.keys.ZoomIn):
			m.zoom(zoomStep)
		case key.Matches(msg, m.keys.ZoomOut):
			m.zoom(1 / zoomStep)
		case key.Matches(msg, m.keys.Fit):
			m.fit()
		case key.Matches(msg, m.keys.Toggle):
			m.toggle(int(msg.String()[0] - '1'))
		}
	}
	return m, nil
}

// resize replaces the surface with one filling the map area. The renderer
// forgets painted areas when the bounds change and requests a repaint.
func (m *model) resize(width, height int) {
	first := m.s == nil
	m.width, m.height = width, height
	rows := max(1, height-headerHeight-footerHeight)
	s, err := surface.New(m.backend, max(1, width), rows)
	if err != nil {
		m.err = err
		return
	}
	m.s = s.(*surface.BrailleSurface)
	m.r.SetBounds(s.Bounds())
	if first {
		m.fit()
	}
}

// repaint serves the pending requests. The surface is cleared and
// painted in full since terminal cells hold no partial state.
func (m *model) repaint() {
	if m.s == nil {
		return
	}
	if _, ok := m.r.Queue().Take(); !ok {
		return
	}
	m.s.Clear()
	m.err = m.r.Paint(m.s, nil)
	m.frame = m.s.Render()
	st := m.r.Stats()
	carto.Logger().Debug("cartoview: frame", "pass", st.Passes, "painted", st.Painted, "failed", st.Failed)
}

func (m *model) fit() {
	if m.s == nil {
		return
	}
	m.r.SetZoom(fit(m.data, m.s.Bounds()))
	m.status = "fit to data"
}

// pan moves the content by a fraction of the surface in each direction.
func (m *model) pan(dx, dy float64) {
	if m.s == nil {
		return
	}
	b := m.s.Bounds()
	change := carto.Translate(dx*panStep*b.Width(), dy*panStep*b.Height())
	m.r.ZoomChanged(&change)
}

// zoom scales the content about the surface centre.
func (m *model) zoom(k float64) {
	if m.s == nil {
		return
	}
	c := m.s.Bounds().Center()
	change := carto.Translate(c.X, c.Y).
		Multiply(carto.Scale(k, k)).
		Multiply(carto.Translate(-c.X, -c.Y))
	m.r.ZoomChanged(&change)
	m.status = fmt.Sprintf("zoom: %.3g px/°", m.r.Zoom().ScaleFactor())
}

func (m *model) toggle(i int) {
	layers := m.r.Layers()
	if i < 0 || i >= len(layers) {
		return
	}
	b := layers[i].Base()
	b.SetVisible(!b.Visible())
	m.status = fmt.Sprintf("%s: %v", b.Name(), b.Visible())
}

// hover shows the tooltip under the terminal cell at (x, y).
func (m *model) hover(x, y int) {
	y -= headerHeight
	if m.s == nil || y < 0 {
		m.tooltip = ""
		return
	}
	p := carto.Point{X: float64(x*dotsX) + dotsX/2, Y: float64(y*dotsY) + dotsY/2}
	m.tooltip, _ = m.r.Tooltip(p)
}

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := titleStyle.Render(" cartoview ") + " " + m.legend()

	body := lipgloss.NewStyle().Width(m.width).Height(m.height - headerHeight - footerHeight).Render(m.frame)

	status := dimStyle.Render(m.status)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	if m.tooltip != "" {
		status = tooltipStyle.Render(m.tooltip) + "  " + status
	}
	footer := lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// legend lists the layers by toggle key, hidden ones struck through.
func (m *model) legend() string {
	var parts []string
	for i, l := range m.r.Layers() {
		if i >= 9 {
			break
		}
		b := l.Base()
		text := fmt.Sprintf("%d:%s", i+1, b.Name())
		if !b.Visible() {
			text = hiddenStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
