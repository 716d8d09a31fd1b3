package cache

// FIFO is a bounded list that drops its oldest element once more than
// limit elements were pushed. Lookups never reorder elements.
//
// FIFO is not safe for concurrent use.
type FIFO[T any] struct {
	items []T
	limit int
}

// NewFIFO creates a FIFO holding at most limit elements. limit must be
// positive.
func NewFIFO[T any](limit int) *FIFO[T] {
	if limit <= 0 {
		panic("cache: FIFO limit must be positive")
	}
	return &FIFO[T]{items: make([]T, 0, limit), limit: limit}
}

// Push appends v. When the FIFO was full the oldest element is removed and
// returned with true.
func (f *FIFO[T]) Push(v T) (evicted T, ok bool) {
	if len(f.items) == f.limit {
		evicted, ok = f.items[0], true
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, v)
	return evicted, ok
}

// All iterates from the oldest to the newest element.
func (f *FIFO[T]) All(yield func(int, T) bool) {
	for i, v := range f.items {
		if !yield(i, v) {
			return
		}
	}
}

// At returns the i-th element, oldest first.
func (f *FIFO[T]) At(i int) T { return f.items[i] }

// Len returns the number of elements.
func (f *FIFO[T]) Len() int { return len(f.items) }

// Limit returns the capacity.
func (f *FIFO[T]) Limit() int { return f.limit }

// Clear removes every element.
func (f *FIFO[T]) Clear() {
	clear(f.items)
	f.items = f.items[:0]
}
