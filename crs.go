package carto

import "fmt"

// Units is the unit of measure of a coordinate system axis.
type Units uint8

// Units constants.
const (
	// UnitsUnknown marks a system whose units are unknown or non-linear.
	UnitsUnknown Units = iota
	// UnitsDegrees is angular degrees (geographic systems).
	UnitsDegrees
	// UnitsMetres is linear metres (projected systems).
	UnitsMetres
	// UnitsPixels is device pixels.
	UnitsPixels
	// UnitsPoints is typographic points, 1/72 inch.
	UnitsPoints
)

// String returns the units name.
func (u Units) String() string {
	switch u {
	case UnitsUnknown:
		return "unknown"
	case UnitsDegrees:
		return "degrees"
	case UnitsMetres:
		return "metres"
	case UnitsPixels:
		return "pixels"
	case UnitsPoints:
		return "points"
	default:
		return fmt.Sprintf("Units(%d)", uint8(u))
	}
}

// IsKnown reports whether u is a defined, known unit.
func (u Units) IsKnown() bool {
	return u > UnitsUnknown && u <= UnitsPoints
}

// CoordinateSystem is a named frame of reference for 2D coordinates.
//
// Coordinate systems are compared with Equivalent, never by pointer: two
// values describing the same frame are interchangeable.
type CoordinateSystem struct {
	// Name is a human readable name.
	Name string
	// Code is an authority code such as "EPSG:4326". Optional.
	Code string
	// Units is the axis unit.
	Units Units
}

// NewCoordinateSystem creates a coordinate system.
func NewCoordinateSystem(name, code string, units Units) *CoordinateSystem {
	return &CoordinateSystem{Name: name, Code: code, Units: units}
}

// String returns the code if set, otherwise the name.
func (cs *CoordinateSystem) String() string {
	if cs == nil {
		return "<nil>"
	}
	if cs.Code != "" {
		return cs.Code
	}
	return cs.Name
}

// key identifies a coordinate system for registry lookups.
func (cs *CoordinateSystem) key() string {
	if cs.Code != "" {
		return cs.Code
	}
	return cs.Name + "|" + cs.Units.String()
}

// Equivalent reports whether a and b describe the same frame. Coded
// systems match on the code alone, uncoded ones on name and units; a coded
// system never matches an uncoded one. Two nil systems are equivalent; nil
// is not equivalent to a non-nil system.
func Equivalent(a, b *CoordinateSystem) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.key() == b.key()
}

var (
	textCS       = &CoordinateSystem{Name: "text", Units: UnitsPoints}
	deviceCS     = &CoordinateSystem{Name: "device", Units: UnitsPixels}
	geographicCS = &CoordinateSystem{Name: "WGS 84", Code: "EPSG:4326", Units: UnitsDegrees}
)

// Text returns the device independent drawing system, in points of 1/72
// inch with y pointing down.
func Text() *CoordinateSystem { return textCS }

// Device returns the output device system, in pixels with y pointing down.
func Device() *CoordinateSystem { return deviceCS }

// Geographic returns the WGS 84 longitude/latitude system.
func Geographic() *CoordinateSystem { return geographicCS }
