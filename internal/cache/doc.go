// Package cache provides the bounded caches used by the renderer.
//
// # Cache[K, V]
//
// A thread-safe LRU cache. Glyph layouts are keyed by normalized label text
// and size so that redrawing a mark layer does not reshape its labels.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// # FIFO[T]
//
// A small bounded list that forgets the oldest element first, used by the
// geometry clip cache where recency of use must not affect eviction.
//
//	f := cache.NewFIFO[int](8)
//	if old, ok := f.Push(v); ok {
//		release(old)
//	}
package cache
