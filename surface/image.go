// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	stddraw "image/draw"

	"github.com/gogpu/carto"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// ImageSurface is a CPU surface that renders to an *image.RGBA.
//
// Fills are anti-aliased by golang.org/x/image/vector, which accumulates
// signed coverage: paths are filled with the non-zero rule whatever their
// Rule. Polygons whose holes wind opposite to their shell fill identically
// under both rules.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600, surface.WithBackground(color.White))
//	s.SetPaint(carto.Red)
//	s.Fill(carto.R(100, 100, 200, 100))
//	png.Encode(w, s.Image())
type ImageSurface struct {
	state

	img *image.RGBA
	z   *vector.Rasterizer
}

var _ carto.Surface = (*ImageSurface)(nil)

// NewImageSurface creates a surface of the given size in pixels.
// Non-positive sizes are clamped to 1.
func NewImageSurface(width, height int, opts ...SurfaceOption) *ImageSurface {
	o := buildOptions(width, height, opts)
	s := NewImageSurfaceFromImage(image.NewRGBA(image.Rect(0, 0, o.Width, o.Height)))
	if o.Background != nil {
		s.Clear(o.Background)
	}
	return s
}

// NewImageSurfaceFromImage creates a surface rendering into img.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	b := img.Bounds()
	s := &ImageSurface{
		state: newState(float64(b.Dx()), float64(b.Dy())),
		img:   img,
		z:     vector.NewRasterizer(b.Dx(), b.Dy()),
	}
	s.bounds = carto.Rect{MinX: float64(b.Min.X), MinY: float64(b.Min.Y), MaxX: float64(b.Max.X), MaxY: float64(b.Max.Y)}
	s.clip = s.bounds
	return s
}

// Width returns the surface width.
func (s *ImageSurface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height.
func (s *ImageSurface) Height() int { return s.img.Bounds().Dy() }

// Image returns the backing image.
func (s *ImageSurface) Image() *image.RGBA { return s.img }

// Clear fills the whole surface with c, ignoring the clip.
func (s *ImageSurface) Clear(c color.Color) {
	stddraw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, stddraw.Src)
}

// Fill implements carto.Surface.
func (s *ImageSurface) Fill(shape carto.Shape) {
	if shape == nil {
		return
	}
	s.fillPath(s.devicePath(shape))
}

// Draw implements carto.Surface.
func (s *ImageSurface) Draw(shape carto.Shape) {
	if shape == nil {
		return
	}
	s.fillPath(s.outline(shape))
}

// DrawGlyphs implements carto.Surface.
func (s *ImageSurface) DrawGlyphs(run *carto.GlyphRun, x, y float64) {
	if run == nil {
		return
	}
	s.fillPath(s.glyphPath(run, x, y))
}

// DrawImage implements carto.Surface. The image is resampled bilinearly.
func (s *ImageSurface) DrawImage(img image.Image, m carto.Affine) {
	if img == nil {
		return
	}
	dm := s.transform.Multiply(m)
	ib := img.Bounds()
	r := s.pixelRect(dm.TransformRect(carto.Rect{
		MinX: float64(ib.Min.X), MinY: float64(ib.Min.Y),
		MaxX: float64(ib.Max.X), MaxY: float64(ib.Max.Y),
	}))
	if r.Empty() {
		return
	}
	dst, ok := s.img.SubImage(r).(*image.RGBA)
	if !ok {
		return
	}
	aff := f64.Aff3{dm.A, dm.B, dm.C, dm.D, dm.E, dm.F}
	draw.BiLinear.Transform(dst, aff, img, ib, draw.Over, nil)
}

// fillPath rasterizes a device path over the pixels it touches.
func (s *ImageSurface) fillPath(p *carto.Path) {
	if p.IsEmpty() {
		return
	}
	r := s.pixelRect(p.Bounds())
	if r.Empty() {
		return
	}
	ext := carto.Rect{MinX: float64(r.Min.X), MinY: float64(r.Min.Y), MaxX: float64(r.Max.X), MaxY: float64(r.Max.Y)}
	s.z.Reset(r.Dx(), r.Dy())
	drawn := false
	for pts := range p.Subpaths() {
		// Rings are clipped to the raster so that far away vertices
		// do not cost scanlines.
		pts = carto.ClipPolygon(pts, ext)
		if len(pts) < 3 {
			continue
		}
		s.z.MoveTo(float32(pts[0].X-ext.MinX), float32(pts[0].Y-ext.MinY))
		for _, q := range pts[1:] {
			s.z.LineTo(float32(q.X-ext.MinX), float32(q.Y-ext.MinY))
		}
		s.z.ClosePath()
		drawn = true
	}
	if drawn {
		s.z.Draw(s.img, r, image.NewUniform(s.paint), image.Point{})
	}
}
