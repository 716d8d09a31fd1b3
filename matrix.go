package carto

import "math"

// singularEpsilon is the determinant magnitude below which an affine
// transform is treated as non-invertible.
const singularEpsilon = 1e-12

// Affine represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
//
// The six values are the compact per-mark transform record used by the
// marks package (scale/shear/translate).
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Affine {
	return Affine{A: x, E: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Multiply returns m * other: other is applied first, then m.
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Affine) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Affine) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y,
		Y: m.D*p.X + m.E*p.Y,
	}
}

// TransformRect returns the bounding box of the transformed corners of r.
func (m Affine) TransformRect(r Rect) Rect {
	if r.IsEmpty() {
		return r
	}
	out := EmptyRect()
	for _, c := range r.Corners() {
		out = out.Extend(m.TransformPoint(c))
	}
	return out
}

// Determinant returns the determinant of the linear part.
func (m Affine) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse matrix, or ErrSingularTransform when the
// matrix is not invertible.
func (m Affine) Invert() (Affine, error) {
	det := m.Determinant()
	if math.Abs(det) < singularEpsilon || math.IsNaN(det) {
		return Affine{}, ErrSingularTransform
	}
	invDet := 1.0 / det
	return Affine{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, nil
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Affine) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsTranslation returns true if the matrix is only a translation.
func (m Affine) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// ScaleFactor returns the uniform scale of the linear part, sqrt(|det|).
func (m Affine) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}

// Normalized returns the linear part of m divided by its ScaleFactor, with
// no translation. Rotation and reflection are kept; the result has unit
// scale. A singular matrix yields the identity.
func (m Affine) Normalized() Affine {
	s := m.ScaleFactor()
	if s < singularEpsilon || math.IsNaN(s) {
		return Identity()
	}
	return Affine{A: m.A / s, B: m.B / s, D: m.D / s, E: m.E / s}
}

// Values returns the six matrix values in A, D, B, E, C, F order, the
// column-major layout used by the compact transform arrays.
func (m Affine) Values() [6]float64 {
	return [6]float64{m.A, m.D, m.B, m.E, m.C, m.F}
}

// AffineFromValues is the inverse of Values.
func AffineFromValues(v [6]float64) Affine {
	return Affine{A: v[0], D: v[1], B: v[2], E: v[3], C: v[4], F: v[5]}
}

// isAxisAligned reports whether m maps axis-aligned rectangles onto
// axis-aligned rectangles (scale, translation and quarter turns).
func (m Affine) isAxisAligned() bool {
	return (m.B == 0 && m.D == 0) || (m.A == 0 && m.E == 0)
}
