package carto

import "sync"

// RepaintQueue carries repaint requests from any goroutine to the goroutine
// that renders. Post returns immediately; pending areas are coalesced until
// the render goroutine calls Take.
//
// A nil area stands for the whole surface.
type RepaintQueue struct {
	mu      sync.Mutex
	pending bool
	full    bool
	area    *Area
	notify  chan struct{}
	wake    func()
}

// NewRepaintQueue creates an empty queue.
func NewRepaintQueue() *RepaintQueue {
	return &RepaintQueue{notify: make(chan struct{}, 1)}
}

// SetWakeup installs fn, called after every Post from the posting goroutine.
// Event loops that cannot select on C use it to schedule a call to Take,
// for example by sending a message to their own loop. fn must not block.
func (q *RepaintQueue) SetWakeup(fn func()) {
	q.mu.Lock()
	q.wake = fn
	q.mu.Unlock()
}

// Post requests a repaint of area, or of the whole surface when area is nil.
func (q *RepaintQueue) Post(area Shape) {
	q.mu.Lock()
	q.pending = true
	switch {
	case q.full:
	case area == nil:
		q.full = true
		q.area = nil
	default:
		if q.area == nil {
			q.area = NewArea()
		}
		q.area.Add(area)
	}
	wake := q.wake
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	if wake != nil {
		wake()
	}
}

// C returns a channel that receives a value when requests are pending.
// Several posts may be signalled by a single value.
func (q *RepaintQueue) C() <-chan struct{} {
	return q.notify
}

// Pending reports whether requests are waiting.
func (q *RepaintQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Take removes the pending requests. It returns the coalesced area (nil for
// the whole surface) and whether anything was pending.
func (q *RepaintQueue) Take() (Shape, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.pending {
		return nil, false
	}
	var area Shape
	if !q.full && q.area != nil {
		area = q.area
	}
	q.pending, q.full, q.area = false, false, nil
	return area, true
}
