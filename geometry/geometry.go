// Package geometry renders large vector datasets through an adaptive cache
// of pre-clipped subsets.
//
// A Geometry is the data collaborator: it knows its bounding box and
// coordinate system, can clip itself to a rectangle and decimates its
// vertices to a rendering resolution. RenderedGeometries and
// RenderedIsolines are the layers drawing geometries; each keeps a ClipCache
// so that panning and zooming within the same general viewport reuses
// earlier clips instead of clipping the full dataset every frame.
package geometry

import "github.com/gogpu/carto"

// Geometry is a vector dataset that can be clipped and decimated.
type Geometry interface {
	// BoundingBox returns the bounds of the data in its coordinate system.
	BoundingBox() carto.Rect

	// Resolution returns the current rendering resolution, the vertex
	// spacing below which detail is dropped. Zero keeps every vertex.
	Resolution() float64
	// SetRenderingResolution changes the rendering resolution. It may
	// force the geometry to re-decimate.
	SetRenderingResolution(res float64)

	// CoordinateSystem returns the system the data is expressed in.
	CoordinateSystem() *carto.CoordinateSystem
	// SetCoordinateSystem reprojects the data in place using a transform
	// from f. On error the geometry is left unchanged.
	SetCoordinateSystem(cs *carto.CoordinateSystem, f carto.TransformFactory) error

	// Clip returns the subset of the data inside r, expressed in cs, or
	// nil when nothing lies inside.
	Clip(r carto.Rect, cs *carto.CoordinateSystem) (Geometry, error)

	// Shape returns the decimated outline for drawing.
	Shape() carto.Shape
}
