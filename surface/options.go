// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "image/color"

// Options configures surface creation.
type Options struct {
	// Width is the surface width. Image surfaces count pixels, braille
	// surfaces count terminal cells.
	Width int

	// Height is the surface height, in the same unit as Width.
	Height int

	// Background is the initial background colour.
	// Default: transparent
	Background color.Color
}

// SurfaceOption configures a surface during creation.
type SurfaceOption func(*Options)

// WithBackground sets the colour the surface is cleared to on creation.
func WithBackground(c color.Color) SurfaceOption {
	return func(o *Options) {
		o.Background = c
	}
}

// DefaultOptions returns Options with default values.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:  max(width, 1),
		Height: max(height, 1),
	}
}

func buildOptions(width, height int, opts []SurfaceOption) Options {
	o := DefaultOptions(width, height)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
