package carto

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"weak"
)

// Layer is a z-ordered element of a Renderer.
//
// Concrete layers embed *BaseLayer, which supplies the dirty-region
// bookkeeping, and implement Paint. Paint and ZoomChanged are called by the
// renderer with the tree lock held.
type Layer interface {
	// Base returns the embedded base layer.
	Base() *BaseLayer
	// Paint draws the layer into rc. Areas drawn should be declared with
	// rc.AddPaintedArea; a layer declaring nothing is assumed to cover the
	// whole surface.
	Paint(rc *RenderingContext) error
	// ZoomChanged is told the device space change applied to content
	// already on screen, or nil when the change is unknown.
	ZoomChanged(change *Affine)
	// Dispose releases caches and listener registrations.
	Dispose()
}

// Preparer is implemented by layers whose data may not be available yet.
// Printing passes call Prepare before painting and wait for it; interactive
// passes never call it.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Tool is an interaction delegate answering tooltip queries for a layer.
// Points are in device pixels.
type Tool interface {
	// Tooltip returns the text to show at p.
	Tooltip(p Point) (string, bool)
	// Consume reports whether the event at p is handled by this layer,
	// hiding it from the layers beneath.
	Consume(p Point) bool
}

// BaseLayer holds the state common to every layer: z-order, visibility,
// coordinate system, preferred area hints and the painted area used to
// skip redundant repaints.
//
// Z-order, visibility and coordinate system can be read from any goroutine.
// Mutations are serialized by the tree lock of the owning renderer, or by a
// private lock while the layer is detached.
type BaseLayer struct {
	name string

	zOrder  atomic.Uint64 // math.Float64bits
	visible atomic.Bool
	cs      atomic.Pointer[CoordinateSystem]

	// Guarded by the tree lock.
	preferredArea      Rect
	preferredPixelSize float64
	paintedArea        Shape // device space, nil = whole surface
	tool               Tool
	disposed           bool

	owner  atomic.Pointer[weak.Pointer[Renderer]]
	ownMu  sync.Mutex
	events EventBus
}

// NewBaseLayer creates a detached, hidden layer in cs.
func NewBaseLayer(name string, cs *CoordinateSystem) *BaseLayer {
	b := &BaseLayer{name: name, preferredArea: EmptyRect()}
	b.cs.Store(cs)
	return b
}

// Base implements Layer.
func (b *BaseLayer) Base() *BaseLayer { return b }

// Name returns the layer name.
func (b *BaseLayer) Name() string { return b.name }

// Renderer returns the owning renderer, or nil when detached. The layer
// never keeps its renderer alive.
func (b *BaseLayer) Renderer() *Renderer {
	if w := b.owner.Load(); w != nil {
		return w.Value()
	}
	return nil
}

func (b *BaseLayer) setRenderer(r *Renderer) {
	if r == nil {
		b.owner.Store(nil)
		return
	}
	w := weak.Make(r)
	b.owner.Store(&w)
}

// TreeLock returns the lock serializing mutations of this layer: the
// owning renderer's tree lock, or a private lock when detached.
func (b *BaseLayer) TreeLock() sync.Locker {
	if r := b.Renderer(); r != nil {
		return &r.mu
	}
	return &b.ownMu
}

// ZOrder returns the z-order. Lower values are painted first.
func (b *BaseLayer) ZOrder() float64 {
	return math.Float64frombits(b.zOrder.Load())
}

// SetZOrder changes the z-order. Infinite values are allowed; NaN panics.
func (b *BaseLayer) SetZOrder(z float64) {
	if math.IsNaN(z) {
		panic(fmt.Sprintf("carto: layer %q: z-order must not be NaN", b.name))
	}
	lock := b.TreeLock()
	lock.Lock()
	old := b.ZOrder()
	b.zOrder.Store(math.Float64bits(z))
	r := b.Renderer()
	if r != nil {
		r.sortLocked()
	}
	lock.Unlock()

	if old != z {
		b.events.Publish(Event{Source: b, Property: PropertyZOrder, Old: old, New: z})
		b.Repaint()
	}
}

// Visible reports whether the layer is painted.
func (b *BaseLayer) Visible() bool { return b.visible.Load() }

// SetVisible shows or hides the layer.
func (b *BaseLayer) SetVisible(v bool) {
	lock := b.TreeLock()
	lock.Lock()
	old := b.visible.Swap(v)
	if !v {
		b.paintedArea = nil
	}
	lock.Unlock()

	if old != v {
		b.events.Publish(Event{Source: b, Property: PropertyVisible, Old: old, New: v})
		b.Repaint()
	}
}

// CoordinateSystem returns the system the layer data is expressed in.
func (b *BaseLayer) CoordinateSystem() *CoordinateSystem { return b.cs.Load() }

// SetCoordinateSystem changes the layer coordinate system.
func (b *BaseLayer) SetCoordinateSystem(cs *CoordinateSystem) {
	lock := b.TreeLock()
	lock.Lock()
	old := b.cs.Swap(cs)
	b.paintedArea = nil
	lock.Unlock()

	if !Equivalent(old, cs) {
		b.events.Publish(Event{Source: b, Property: PropertyCoordinateSystem, Old: old, New: cs})
		b.Repaint()
	}
}

// PreferredArea returns the display area hint in the layer coordinate
// system and the preferred pixel size in the same units. An empty area
// means no preference.
func (b *BaseLayer) PreferredArea() (Rect, float64) {
	lock := b.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return b.preferredArea, b.preferredPixelSize
}

// SetPreferredArea sets the display area hint.
func (b *BaseLayer) SetPreferredArea(area Rect, pixelSize float64) {
	lock := b.TreeLock()
	lock.Lock()
	old := b.preferredArea
	b.preferredArea = area
	b.preferredPixelSize = pixelSize
	lock.Unlock()

	b.events.Publish(Event{Source: b, Property: PropertyPreferredArea, Old: old, New: area})
}

// PaintedArea returns the device space region holding the last rendering
// of the layer, or nil when unknown. The caller must hold the tree lock.
func (b *BaseLayer) PaintedArea() Shape { return b.paintedArea }

// Tool returns the interaction delegate, if any.
func (b *BaseLayer) Tool() Tool {
	lock := b.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return b.tool
}

// SetTool installs an interaction delegate.
func (b *BaseLayer) SetTool(t Tool) {
	lock := b.TreeLock()
	lock.Lock()
	b.tool = t
	lock.Unlock()
}

// Subscribe registers a listener for property changes of this layer.
func (b *BaseLayer) Subscribe(fn Listener) (unsubscribe func()) {
	return b.events.Subscribe(fn)
}

// Publish notifies the layer listeners. Concrete layers use it to announce
// data changes.
func (b *BaseLayer) Publish(property string, old, new any) {
	b.events.Publish(Event{Source: b, Property: property, Old: old, New: new})
}

// Repaint asks the owning renderer to repaint. It may be called from any
// goroutine and returns immediately.
func (b *BaseLayer) Repaint() {
	if r := b.Renderer(); r != nil {
		r.Repaint(nil)
	}
}

// Invalidate forgets the painted area so the next update paints the layer
// whatever the clip. The caller must hold the tree lock.
func (b *BaseLayer) Invalidate() {
	b.paintedArea = nil
}

// ZoomChanged implements Layer. With a nil change the painted area is
// forgotten. Otherwise the painted area follows the content by change and
// grows by the part of the surface newly exposed.
func (b *BaseLayer) ZoomChanged(change *Affine) {
	if b.paintedArea == nil {
		return
	}
	if change == nil {
		b.paintedArea = nil
		return
	}
	if change.IsIdentity() {
		return
	}
	var bounds Rect
	if r := b.Renderer(); r != nil {
		bounds = r.bounds
	}
	if bounds.IsEmpty() {
		b.paintedArea = nil
		return
	}
	moved := transformShape(b.paintedArea, *change)
	exposed := Difference(bounds, NewTransformedShape(bounds, *change))
	b.paintedArea = NewArea(moved, exposed)
}

// Dispose implements Layer. It removes every listener.
func (b *BaseLayer) Dispose() {
	lock := b.TreeLock()
	lock.Lock()
	b.disposed = true
	b.paintedArea = nil
	b.tool = nil
	lock.Unlock()
	b.events.Close()
}

// Disposed reports whether Dispose was called.
func (b *BaseLayer) Disposed() bool {
	lock := b.TreeLock()
	lock.Lock()
	defer lock.Unlock()
	return b.disposed
}

// update runs the dirty-region protocol for l. The tree lock is held.
// It reports whether Paint was invoked.
func update(l Layer, rc *RenderingContext, clip *Rect) (bool, error) {
	b := l.Base()
	if !b.Visible() {
		return false, nil
	}
	if b.paintedArea != nil && clip != nil && !b.paintedArea.IntersectsRect(*clip) {
		return false, nil
	}
	rc.beginLayer(b)
	if err := l.Paint(rc); err != nil {
		return true, err
	}
	if rc.textToDevice.IsIdentity() {
		b.paintedArea = rc.PaintedArea()
	}
	return true, nil
}
