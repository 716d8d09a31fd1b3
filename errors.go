package carto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the carto package.
var (
	// ErrSingularTransform is returned when an affine transform has no inverse.
	ErrSingularTransform = errors.New("carto: singular transform")

	// ErrNotAffine is returned by AffineTransform when the composed
	// transform between two coordinate systems is not affine.
	ErrNotAffine = errors.New("carto: transform is not affine")

	// ErrInvalidResolution is returned when a rendering resolution is
	// negative or NaN. Zero is accepted and means "finest".
	ErrInvalidResolution = errors.New("carto: invalid rendering resolution")

	// ErrLayerAttached is returned when adding a layer that already belongs
	// to a renderer.
	ErrLayerAttached = errors.New("carto: layer already belongs to a renderer")

	// ErrLayerNotFound is returned when removing a layer the renderer does not own.
	ErrLayerNotFound = errors.New("carto: layer not found")

	// ErrDisposed is returned by operations on a disposed renderer.
	ErrDisposed = errors.New("carto: renderer disposed")

	// ErrNoTransformPath is wrapped by TransformCreationError when the
	// factory knows no chain of transforms between two systems.
	ErrNoTransformPath = errors.New("carto: no transform path")

	// ErrNotInvertible is returned by Inverse when a transform has no inverse.
	ErrNotInvertible = errors.New("carto: transform is not invertible")

	// ErrNilCoordinateSystem is returned when a transform is requested for
	// a nil coordinate system.
	ErrNilCoordinateSystem = errors.New("carto: nil coordinate system")
)

// TransformCreationError is returned when no transform path exists between
// two coordinate systems.
type TransformCreationError struct {
	Source, Target *CoordinateSystem
	Err            error
}

func (e *TransformCreationError) Error() string {
	msg := fmt.Sprintf("carto: cannot create transform from %s to %s", e.Source, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransformCreationError) Unwrap() error { return e.Err }

// TransformError is returned when applying a transform to a coordinate fails
// during a paint pass. Layer is the name of the layer being painted, if any.
type TransformError struct {
	Layer string
	Point Point
	Err   error
}

func (e *TransformError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("carto: layer %q: transform failed at (%g, %g): %v", e.Layer, e.Point.X, e.Point.Y, e.Err)
	}
	return fmt.Sprintf("carto: transform failed at (%g, %g): %v", e.Point.X, e.Point.Y, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
