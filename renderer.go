package carto

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Stats counts the work done by the last paint pass.
type Stats struct {
	Passes  int // passes run since creation
	Painted int // layers painted in the last pass
	Skipped int // visible layers skipped by the dirty test in the last pass
	Failed  int // layers whose paint failed in the last pass
}

// Renderer owns an ordered list of layers sharing one display coordinate
// system and composites them onto a Surface.
//
// Paint, Print and ProcessRepaints run on the render goroutine. Repaint may
// be called from any goroutine. Every mutation of the renderer or of its
// layers is serialized by the tree lock.
type Renderer struct {
	mu sync.Mutex // tree lock

	displayCS  *CoordinateSystem
	resolution float64
	factory    TransformFactory
	styles     StyleProvider
	labeler    Labeler
	queue      *RepaintQueue

	layers   []Layer // ascending z-order
	zoom     Affine  // display to text
	bounds   Rect    // surface bounds, device pixels
	stats    Stats
	disposed bool

	cacheMu   sync.Mutex
	commonest Transform

	events EventBus
}

// NewRenderer creates a renderer whose display system is display.
func NewRenderer(display *CoordinateSystem, opts ...RendererOption) *Renderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = NewRegistry()
	}
	if o.queue == nil {
		o.queue = NewRepaintQueue()
	}
	return &Renderer{
		displayCS:  display,
		resolution: o.resolution,
		factory:    o.factory,
		styles:     o.styles,
		labeler:    o.labeler,
		queue:      o.queue,
		zoom:       Identity(),
		bounds:     EmptyRect(),
	}
}

// DisplayCS returns the display (map) coordinate system.
func (r *Renderer) DisplayCS() *CoordinateSystem { return r.displayCS }

// Queue returns the repaint queue.
func (r *Renderer) Queue() *RepaintQueue { return r.queue }

// Transform returns a transform from src to dst. The most recent transform
// into the display system is cached and returned while its source and
// target stay equivalent to the request. Creation failures are returned as
// *TransformCreationError.
func (r *Renderer) Transform(src, dst *CoordinateSystem) (Transform, error) {
	if src != nil && Equivalent(src, dst) {
		return IdentityTransform(src), nil
	}
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if c := r.commonest; c != nil && Equivalent(c.Source(), src) && Equivalent(c.Target(), dst) {
		return c, nil
	}
	t, err := r.factory.CreateTransform(src, dst)
	if err != nil {
		var tce *TransformCreationError
		if !errors.As(err, &tce) {
			err = &TransformCreationError{Source: src, Target: dst, Err: err}
		}
		return nil, err
	}
	Logger().Debug("carto: created transform", "source", src.String(), "target", dst.String())
	if Equivalent(dst, r.displayCS) {
		r.commonest = t
	}
	return t, nil
}

// CreateTransform implements TransformFactory through Transform, so a
// renderer can be handed to collaborators that reproject their data.
func (r *Renderer) CreateTransform(src, dst *CoordinateSystem) (Transform, error) {
	return r.Transform(src, dst)
}

// Resolution returns the rendering resolution in device pixels.
func (r *Renderer) Resolution() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolution
}

func validResolution(res float64) bool {
	return res >= 0 && !math.IsInf(res, 1)
}

// SetResolution sets the rendering resolution. Zero selects the finest
// resolution; negative, infinite and NaN values are rejected.
func (r *Renderer) SetResolution(res float64) error {
	if !validResolution(res) {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, res)
	}
	r.mu.Lock()
	old := r.resolution
	r.resolution = res
	r.mu.Unlock()

	if old != res {
		r.events.Publish(Event{Source: r, Property: PropertyResolution, Old: old, New: res})
		r.Repaint(nil)
	}
	return nil
}

// Bounds returns the surface bounds in device pixels.
func (r *Renderer) Bounds() Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds
}

// SetBounds sets the surface bounds in device pixels. Layers forget their
// painted areas when the size changes.
func (r *Renderer) SetBounds(b Rect) {
	r.mu.Lock()
	changed := b != r.bounds
	r.bounds = b
	if changed {
		for _, l := range r.layers {
			l.ZoomChanged(nil)
		}
	}
	r.mu.Unlock()
	if changed {
		r.Repaint(nil)
	}
}

// Zoom returns the display to text transform.
func (r *Renderer) Zoom() Affine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoom
}

// SetZoom replaces the display to text transform and tells every layer the
// resulting change.
func (r *Renderer) SetZoom(m Affine) {
	r.mu.Lock()
	old := r.zoom
	var change *Affine
	if inv, err := old.Invert(); err == nil {
		d := m.Multiply(inv)
		change = &d
	}
	r.zoom = m
	r.zoomChangedLocked(change)
	r.mu.Unlock()

	r.events.Publish(Event{Source: r, Property: PropertyZoom, Old: old, New: m})
	r.Repaint(nil)
}

// ZoomChanged applies change, a device space transform, to the current
// zoom and to the painted areas of every layer. A nil change tells layers
// the change is unknown; the zoom itself is left untouched.
func (r *Renderer) ZoomChanged(change *Affine) {
	r.mu.Lock()
	old := r.zoom
	if change != nil {
		r.zoom = change.Multiply(r.zoom)
	}
	r.zoomChangedLocked(change)
	nz := r.zoom
	r.mu.Unlock()

	r.events.Publish(Event{Source: r, Property: PropertyZoom, Old: old, New: nz})
	r.Repaint(nil)
}

func (r *Renderer) zoomChangedLocked(change *Affine) {
	for _, l := range r.layers {
		l.ZoomChanged(change)
	}
}

// Add attaches l. The layer becomes visible and a repaint is requested.
func (r *Renderer) Add(l Layer) error {
	b := l.Base()
	if b.Renderer() != nil {
		return fmt.Errorf("%w: %q", ErrLayerAttached, b.name)
	}
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return ErrDisposed
	}
	b.setRenderer(r)
	b.paintedArea = nil
	r.layers = append(r.layers, l)
	r.sortLocked()
	n := len(r.layers)
	r.mu.Unlock()

	Logger().Debug("carto: layer added", "layer", b.name, "z", b.ZOrder())
	r.events.Publish(Event{Source: r, Property: PropertyLayers, Old: n - 1, New: n})
	b.SetVisible(true)
	r.Repaint(nil)
	return nil
}

// Remove detaches l. The layer becomes invisible and the area it covered
// is repainted.
func (r *Renderer) Remove(l Layer) error {
	b := l.Base()
	r.mu.Lock()
	i := slices.IndexFunc(r.layers, func(x Layer) bool { return x.Base() == b })
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrLayerNotFound, b.name)
	}
	area := b.paintedArea
	r.layers = slices.Delete(r.layers, i, i+1)
	b.visible.Store(false)
	b.paintedArea = nil
	b.setRenderer(nil)
	n := len(r.layers)
	r.mu.Unlock()

	Logger().Debug("carto: layer removed", "layer", b.name)
	b.events.Publish(Event{Source: b, Property: PropertyVisible, Old: true, New: false})
	r.events.Publish(Event{Source: r, Property: PropertyLayers, Old: n + 1, New: n})
	r.Repaint(area)
	return nil
}

// RemoveAll detaches every layer.
func (r *Renderer) RemoveAll() {
	for _, l := range r.Layers() {
		_ = r.Remove(l)
	}
}

// Layers returns the layers in paint order.
func (r *Renderer) Layers() []Layer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.layers)
}

// sortLocked restores ascending z-order. Layers with equal z-order keep
// their insertion order.
func (r *Renderer) sortLocked() {
	slices.SortStableFunc(r.layers, func(a, b Layer) int {
		return cmp.Compare(a.Base().ZOrder(), b.Base().ZOrder())
	})
}

// Paint runs an interactive pass over s. Layers whose painted area does not
// intersect clip are skipped; a nil clip repaints everything. Paint errors
// are collected and returned after all layers had their turn.
func (r *Renderer) Paint(s Surface, clip *Rect) error {
	return r.paint(context.Background(), s, clip, Identity(), false)
}

// Print runs a printing pass over s with the given text to device
// transform. Layers implementing Preparer are prepared first and every
// visible layer is painted. Print stops early when ctx is done.
func (r *Renderer) Print(ctx context.Context, s Surface, textToDevice Affine) error {
	for _, l := range r.Layers() {
		if !l.Base().Visible() {
			continue
		}
		if p, ok := l.(Preparer); ok {
			if err := p.Prepare(ctx); err != nil {
				return fmt.Errorf("carto: prepare layer %q: %w", l.Base().name, err)
			}
		}
	}
	return r.paint(ctx, s, nil, textToDevice, true)
}

func (r *Renderer) paint(ctx context.Context, s Surface, clip *Rect, textToDevice Affine, printing bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if !printing {
		r.bounds = s.Bounds()
	}
	if clip != nil {
		s.SetClip(clip.Intersect(s.Bounds()))
	} else {
		s.SetClip(s.Bounds())
	}

	rc := newRenderingContext(ctx, r, s, clip, textToDevice, printing)
	stats := Stats{Passes: r.stats.Passes + 1}
	var errs []error
	for _, l := range r.layers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		painted, err := update(l, rc, clip)
		switch {
		case err != nil:
			stats.Failed++
			errs = append(errs, fmt.Errorf("carto: paint layer %q: %w", l.Base().name, err))
		case painted:
			stats.Painted++
		case l.Base().Visible():
			stats.Skipped++
		}
	}
	r.stats = stats
	Logger().Debug("carto: pass complete",
		"printing", printing,
		"painted", stats.Painted,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return errors.Join(errs...)
}

// Stats returns the counters of the last pass.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Repaint requests a repaint of area (device pixels), or of the whole
// surface when area is nil. It is safe to call from any goroutine and
// returns immediately; the request is served by ProcessRepaints.
func (r *Renderer) Repaint(area Shape) {
	r.queue.Post(area)
}

// ProcessRepaints serves pending repaint requests on the render goroutine.
// It reports whether a pass was run.
func (r *Renderer) ProcessRepaints(s Surface) (bool, error) {
	area, ok := r.queue.Take()
	if !ok {
		return false, nil
	}
	var clip *Rect
	if area != nil {
		b := area.Bounds()
		clip = &b
	}
	return true, r.Paint(s, clip)
}

// Tooltip returns the tooltip of the topmost visible layer answering at p,
// in device pixels. A layer whose tool consumes p hides the layers beneath.
func (r *Renderer) Tooltip(p Point) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.layers) - 1; i >= 0; i-- {
		l := r.layers[i]
		b := l.Base()
		if !b.Visible() {
			continue
		}
		tool := b.tool
		if tool == nil {
			tool, _ = l.(Tool)
		}
		if tool == nil {
			continue
		}
		if text, ok := tool.Tooltip(p); ok {
			return text, true
		}
		if tool.Consume(p) {
			return "", false
		}
	}
	return "", false
}

// Subscribe registers a listener for renderer property changes.
func (r *Renderer) Subscribe(fn Listener) (unsubscribe func()) {
	return r.events.Subscribe(fn)
}

// Dispose disposes every layer and releases the renderer. Later passes
// fail with ErrDisposed.
func (r *Renderer) Dispose() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.disposed = true
	layers := r.layers
	r.layers = nil
	for _, l := range layers {
		l.Base().setRenderer(nil)
	}
	r.mu.Unlock()

	for _, l := range layers {
		l.Dispose()
	}
	r.cacheMu.Lock()
	r.commonest = nil
	r.cacheMu.Unlock()
	r.events.Close()
}
