package geometry

import (
	"github.com/gogpu/carto"
	"github.com/gogpu/carto/internal/cache"
)

// Clip cache tuning.
const (
	// ClipEpsilon inflates the visible rectangle before candidates are
	// tested, so that rounding in the view transform does not defeat reuse.
	ClipEpsilon = 1.05

	// ClipThreshold is the linear oversize tolerated before a candidate is
	// reclipped. A candidate is reused while its area is at most
	// ClipThreshold² times the clip area.
	ClipThreshold = 4

	// DefaultClipCacheSize is the number of clipped subsets kept.
	DefaultClipCacheSize = 8
)

// ClipEntry is a cached clipped subset. Bounds is the rectangle the subset
// was clipped to: every part of the master inside Bounds is present in
// Geometry. Geometry is nil when nothing fell inside.
type ClipEntry struct {
	Bounds   carto.Rect
	Geometry Geometry
}

// ClipCache selects, for a visible rectangle, the smallest known geometry
// covering it and clips a new subset when every candidate is too large.
//
// ClipCache is not safe for concurrent use; layers use it under the tree
// lock.
type ClipCache struct {
	entries *cache.FIFO[ClipEntry]
	clips   int
}

// NewClipCache creates a cache keeping at most size subsets.
// A non-positive size selects DefaultClipCacheSize.
func NewClipCache(size int) *ClipCache {
	if size <= 0 {
		size = DefaultClipCacheSize
	}
	return &ClipCache{entries: cache.NewFIFO[ClipEntry](size)}
}

// Select returns the geometry to draw for the visible rectangle clip, in
// the coordinate system cs of master. The result is master itself, a
// cached subset, or a freshly clipped subset which is then cached. A nil
// geometry with a nil error means nothing is visible.
func (c *ClipCache) Select(master Geometry, clip carto.Rect, cs *carto.CoordinateSystem) (Geometry, error) {
	if master == nil {
		return nil, nil
	}
	mb := master.BoundingBox()
	if mb.IsEmpty() {
		return nil, nil
	}
	clip = clip.Inflate(ClipEpsilon)
	clipArea := clip.Area()
	if clip.IsEmpty() || clipArea <= 0 || clip.ContainsRect(mb) {
		return master, nil
	}

	best := ClipEntry{Bounds: mb, Geometry: master}
	bestRatio := mb.Area() / clipArea
	for _, e := range c.entries.All {
		if !e.Bounds.ContainsRect(clip) {
			continue
		}
		if r := e.Bounds.Area() / clipArea; r < bestRatio {
			best, bestRatio = e, r
		}
	}
	if bestRatio <= ClipThreshold*ClipThreshold || best.Geometry == nil {
		carto.Logger().Debug("geometry: clip cache hit", "ratio", bestRatio, "master", best.Geometry == master)
		return best.Geometry, nil
	}

	r := clip.Inflate((ClipThreshold + 1) / 2.0).Intersect(best.Bounds)
	sub, err := best.Geometry.Clip(r, cs)
	if err != nil {
		return nil, err
	}
	c.clips++
	if old, evicted := c.entries.Push(ClipEntry{Bounds: r, Geometry: sub}); evicted {
		carto.Logger().Debug("geometry: clip cache eviction", "bounds", old.Bounds)
	}
	carto.Logger().Debug("geometry: clipped subset", "ratio", bestRatio, "bounds", r, "cached", c.entries.Len())
	return sub, nil
}

// Len returns the number of cached subsets.
func (c *ClipCache) Len() int { return c.entries.Len() }

// Clips returns the number of geometric clips performed since creation.
func (c *ClipCache) Clips() int { return c.clips }

// Entries returns the cached subsets, oldest first.
func (c *ClipCache) Entries() []ClipEntry {
	out := make([]ClipEntry, 0, c.entries.Len())
	for _, e := range c.entries.All {
		out = append(out, e)
	}
	return out
}

// Clear drops every cached subset, for example after the master changed.
func (c *ClipCache) Clear() { c.entries.Clear() }
