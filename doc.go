// Package carto renders geographic vector, point and grid datasets
// interactively.
//
// # Overview
//
// A Renderer owns a list of z-ordered layers sharing one display (map)
// coordinate system. Each layer keeps its data in its own coordinate
// system; transforms into the display system come from a pluggable
// TransformFactory and the most common one is cached by the renderer.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/carto"
//		"github.com/gogpu/carto/geometry"
//		"github.com/gogpu/carto/surface"
//	)
//
//	r := carto.NewRenderer(carto.Geographic())
//	r.SetZoom(carto.Scale(4, -4).Multiply(carto.Translate(180, -90)))
//
//	coast := geometry.NewPolylines(carto.Geographic(), lines)
//	_ = r.Add(geometry.NewRenderedGeometries("coast", coast))
//
//	s := surface.NewImageSurface(1440, 720)
//	if err := r.Paint(s, nil); err != nil {
//		log.Fatal(err)
//	}
//
// # Coordinate Systems
//
// Every paint pass exposes three systems through its RenderingContext:
//   - map: the renderer display system
//   - text: device independent points of 1/72 inch
//   - device: the pixels of the output surface
//
// The renderer zoom maps display coordinates to text coordinates. On screen
// text and device coincide; printing passes insert a scale.
//
// # Incremental Repaint
//
// Each layer remembers the device region it painted last. A pass with a
// clip rectangle skips layers whose painted region does not intersect the
// clip. ZoomChanged moves remembered regions with the content and adds the
// part of the surface newly exposed, so that panning repaints only the
// layers touching the uncovered strip.
//
// # Concurrency
//
// Painting runs on one goroutine under the renderer tree lock, which also
// serializes every mutation of the renderer and its layers. Repaint may be
// called from any goroutine: requests are posted to a RepaintQueue and
// served by ProcessRepaints on the render goroutine.
//
// # Logging
//
// The package logs through log/slog and is silent by default. Use
// SetLogger to enable output.
package carto
