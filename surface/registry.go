// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/carto"
)

// Kind tells where a backend's pixels end up.
type Kind int

const (
	// Raster backends draw into an in-memory image.
	Raster Kind = iota
	// Terminal backends produce text for a character grid.
	Terminal
	// Record backends keep the operations instead of pixels.
	Record
)

func (k Kind) String() string {
	switch k {
	case Raster:
		return "raster"
	case Terminal:
		return "terminal"
	case Record:
		return "record"
	}
	return "unknown"
}

// Backend is a named way to create surfaces. Width and height are in the
// unit of the backend: pixels for rasters, cells for terminals.
type Backend struct {
	Name string
	Kind Kind
	New  func(width, height int, opts ...SurfaceOption) carto.Surface
}

// UnknownBackendError is returned for a name no backend is registered under.
type UnknownBackendError struct {
	Name  string
	Known []string
}

func (e *UnknownBackendError) Error() string {
	return "surface: unknown backend " + e.Name + " (have " + strings.Join(e.Known, ", ") + ")"
}

var backends = struct {
	sync.RWMutex
	m map[string]Backend
}{m: make(map[string]Backend)}

// Register adds b under b.Name, replacing any backend of the same name.
func Register(b Backend) {
	backends.Lock()
	backends.m[b.Name] = b
	backends.Unlock()
}

// Names returns the registered backend names in lexical order.
func Names() []string {
	backends.RLock()
	defer backends.RUnlock()
	names := make([]string, 0, len(backends.m))
	for name := range backends.m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	backends.RLock()
	b, ok := backends.m[name]
	backends.RUnlock()
	if !ok {
		return Backend{}, &UnknownBackendError{Name: name, Known: Names()}
	}
	return b, nil
}

// New creates a width x height surface with the named backend.
func New(name string, width, height int, opts ...SurfaceOption) (carto.Surface, error) {
	b, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return b.New(width, height, opts...), nil
}

func init() {
	Register(Backend{Name: "image", Kind: Raster, New: func(w, h int, opts ...SurfaceOption) carto.Surface {
		return NewImageSurface(w, h, opts...)
	}})
	Register(Backend{Name: "braille", Kind: Terminal, New: func(w, h int, opts ...SurfaceOption) carto.Surface {
		return NewBrailleSurface(w, h, opts...)
	}})
	Register(Backend{Name: "recorder", Kind: Record, New: func(w, h int, opts ...SurfaceOption) carto.Surface {
		return NewRecorder(w, h, opts...)
	}})
}
