package carto

import (
	"fmt"
	"sync"
)

// Property names published on layer and renderer event buses.
const (
	PropertyVisible          = "visible"
	PropertyZOrder           = "zOrder"
	PropertyCoordinateSystem = "coordinateSystem"
	PropertyPreferredArea    = "preferredArea"
	PropertyResolution       = "resolution"
	PropertyZoom             = "zoom"
	PropertyLayers           = "layers"
	PropertyData             = "data"
)

// Event is a property change notification.
type Event struct {
	// Source is the layer or renderer whose property changed.
	Source   any
	Property string
	Old, New any
}

// Listener receives events.
type Listener func(Event)

// EventBus delivers property change events to listeners registered on one
// layer or renderer. A panicking listener is recovered and logged; the
// remaining listeners still run.
//
// The zero value is ready to use. EventBus is safe for concurrent use.
type EventBus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []subscription
}

type subscription struct {
	id uint64
	fn Listener
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *EventBus) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *EventBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (b *EventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Publish delivers e to every listener in registration order. Listeners run
// on the calling goroutine without the bus lock held, so they may subscribe
// or unsubscribe.
func (b *EventBus) Publish(e Event) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.deliver(s.fn, e)
	}
}

func (b *EventBus) deliver(fn Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("carto: event listener panicked",
				"property", e.Property,
				"panic", fmt.Sprint(r))
		}
	}()
	fn(e)
}

// Close removes all listeners.
func (b *EventBus) Close() {
	b.mu.Lock()
	b.listeners = nil
	b.mu.Unlock()
}
