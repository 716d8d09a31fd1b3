// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides output surfaces for carto paint passes.
//
// Every surface implements carto.Surface: shapes arrive in user space and
// are mapped to device pixels by the current transform, drawing is limited
// to the clip rectangle, and strokes are expanded into fill outlines.
//
// # Surface Types
//
//   - ImageSurface: anti-aliased rendering to *image.RGBA with
//     golang.org/x/image/vector
//   - BrailleSurface: terminal rendering, one braille cell per 2x4 pixels
//   - Recorder: records operations for tests and replay
//
// # Registry
//
// Backends register under a name, so a command line flag can pick one:
//
//	s, err := surface.New("braille", 80, 24)
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600, surface.WithBackground(carto.White))
//	if err := renderer.Paint(s, nil); err != nil {
//		return err
//	}
//	png.Encode(w, s.Image())
package surface
