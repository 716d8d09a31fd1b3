package carto

// Shape is a closed planar region with an outline.
//
// Contains and the rectangle predicates are evaluated against the filled
// interior. AppendPath emits the outline transformed by m so that wrappers
// can forward through transform composition without allocating copies.
type Shape interface {
	Bounds() Rect
	Contains(p Point) bool
	IntersectsRect(r Rect) bool
	ContainsRect(r Rect) bool
	AppendPath(p *Path, m Affine)
}

// ShapePath returns the outline of s as a new path in the shape's own space.
func ShapePath(s Shape) *Path {
	p := NewPath()
	if s != nil {
		s.AppendPath(p, Identity())
	}
	return p
}

// TransformedShape is a lazy view of a base shape under an affine
// transform. Containment and intersection are answered through the inverse
// transform against the untransformed base, so no transformed geometry is
// materialized.
//
// A TransformedShape may be reused across many marks by calling Set; the
// inverse is recomputed lazily on the next query.
type TransformedShape struct {
	shape     Shape
	transform Affine

	inverse    Affine
	invertible bool
	invValid   bool
}

// NewTransformedShape creates a view of shape under transform.
func NewTransformedShape(shape Shape, transform Affine) *TransformedShape {
	return &TransformedShape{shape: shape, transform: transform}
}

// Set replaces the base shape and transform.
func (ts *TransformedShape) Set(shape Shape, transform Affine) {
	ts.shape = shape
	ts.transform = transform
	ts.invValid = false
}

// SetTransform replaces the transform, keeping the base shape.
func (ts *TransformedShape) SetTransform(transform Affine) {
	ts.transform = transform
	ts.invValid = false
}

// Shape returns the base shape.
func (ts *TransformedShape) Shape() Shape { return ts.shape }

// Transform returns the view transform.
func (ts *TransformedShape) Transform() Affine { return ts.transform }

func (ts *TransformedShape) inv() (Affine, bool) {
	if !ts.invValid {
		inv, err := ts.transform.Invert()
		ts.inverse, ts.invertible = inv, err == nil
		ts.invValid = true
		if err != nil {
			Logger().Warn("carto: singular shape transform", "transform", ts.transform)
		}
	}
	return ts.inverse, ts.invertible
}

// Bounds returns the bounds of the transformed base bounds. The result is
// conservative under rotation and shear.
func (ts *TransformedShape) Bounds() Rect {
	if ts.shape == nil {
		return EmptyRect()
	}
	b := ts.shape.Bounds()
	if b.IsEmpty() {
		return b
	}
	return ts.transform.TransformRect(b)
}

// Contains reports whether p lies in the transformed shape.
// A singular transform yields false.
func (ts *TransformedShape) Contains(p Point) bool {
	if ts.shape == nil {
		return false
	}
	inv, ok := ts.inv()
	if !ok {
		return false
	}
	return ts.shape.Contains(inv.TransformPoint(p))
}

// IntersectsRect reports whether the transformed shape touches r.
func (ts *TransformedShape) IntersectsRect(r Rect) bool {
	if ts.shape == nil || !ts.Bounds().Intersects(r) {
		return false
	}
	inv, ok := ts.inv()
	if !ok {
		return false
	}
	if inv.isAxisAligned() {
		return ts.shape.IntersectsRect(inv.TransformRect(r))
	}
	return ts.outline().IntersectsRect(r)
}

// ContainsRect reports whether r lies entirely in the transformed shape.
func (ts *TransformedShape) ContainsRect(r Rect) bool {
	if ts.shape == nil {
		return false
	}
	inv, ok := ts.inv()
	if !ok {
		return false
	}
	if inv.isAxisAligned() {
		return ts.shape.ContainsRect(inv.TransformRect(r))
	}
	return ts.outline().ContainsRect(r)
}

// AppendPath appends the base outline transformed by m·transform.
func (ts *TransformedShape) AppendPath(p *Path, m Affine) {
	if ts.shape == nil {
		return
	}
	ts.shape.AppendPath(p, m.Multiply(ts.transform))
}

func (ts *TransformedShape) outline() *Path {
	p := NewPath()
	ts.AppendPath(p, Identity())
	if bp, ok := ts.shape.(*Path); ok {
		p.Rule = bp.Rule
	}
	return p
}

// maxAreaShapes bounds the number of shapes kept by an Area before it
// collapses to its bounding box.
const maxAreaShapes = 16

// Area is a union of shapes. It is used to accumulate the region a layer
// painted during a pass. The zero value is an empty area.
//
// An Area holding more than 16 shapes is collapsed into its bounding
// rectangle, which keeps dirty tests cheap at the cost of precision.
type Area struct {
	shapes []Shape
	bounds Rect
}

// NewArea returns the union of the given shapes.
func NewArea(shapes ...Shape) *Area {
	a := &Area{bounds: EmptyRect()}
	for _, s := range shapes {
		a.Add(s)
	}
	return a
}

// Add unions s into the area. Nested areas are flattened.
func (a *Area) Add(s Shape) {
	if s == nil {
		return
	}
	if len(a.shapes) == 0 {
		a.bounds = EmptyRect()
	}
	if o, ok := s.(*Area); ok {
		for _, sub := range o.shapes {
			a.Add(sub)
		}
		return
	}
	b := s.Bounds()
	if b.IsEmpty() {
		return
	}
	a.shapes = append(a.shapes, s)
	a.bounds = a.bounds.Union(b)
	if len(a.shapes) > maxAreaShapes {
		a.shapes = append(a.shapes[:0], a.bounds)
	}
}

// Union returns a new area containing a and s.
func (a *Area) Union(s Shape) *Area {
	out := NewArea(a.shapes...)
	out.Add(s)
	return out
}

// Len returns the number of shapes in the area.
func (a *Area) Len() int { return len(a.shapes) }

// IsEmpty reports whether the area covers nothing.
func (a *Area) IsEmpty() bool { return len(a.shapes) == 0 }

// Transform returns the area with every shape transformed by m.
func (a *Area) Transform(m Affine) *Area {
	out := &Area{bounds: EmptyRect()}
	for _, s := range a.shapes {
		out.Add(transformShape(s, m))
	}
	return out
}

// transformShape applies m to s, keeping rectangles as rectangles when m
// preserves axis alignment and composing nested transformed views.
func transformShape(s Shape, m Affine) Shape {
	switch v := s.(type) {
	case Rect:
		if m.isAxisAligned() {
			return m.TransformRect(v)
		}
	case *TransformedShape:
		return NewTransformedShape(v.shape, m.Multiply(v.transform))
	case *Area:
		return v.Transform(m)
	}
	return NewTransformedShape(s, m)
}

// Bounds returns the bounding box of the area.
func (a *Area) Bounds() Rect {
	if len(a.shapes) == 0 {
		return EmptyRect()
	}
	return a.bounds
}

// Contains reports whether any shape in the area contains p.
func (a *Area) Contains(p Point) bool {
	if !a.Bounds().ContainsPoint(p) {
		return false
	}
	for _, s := range a.shapes {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// IntersectsRect reports whether any shape in the area touches r.
func (a *Area) IntersectsRect(r Rect) bool {
	if !a.Bounds().Intersects(r) {
		return false
	}
	for _, s := range a.shapes {
		if s.IntersectsRect(r) {
			return true
		}
	}
	return false
}

// ContainsRect reports whether a single shape of the area contains r.
// A rectangle covered only by several shapes together is reported as not
// contained.
func (a *Area) ContainsRect(r Rect) bool {
	for _, s := range a.shapes {
		if s.ContainsRect(r) {
			return true
		}
	}
	return false
}

// AppendPath appends the outline of every shape.
func (a *Area) AppendPath(p *Path, m Affine) {
	for _, s := range a.shapes {
		s.AppendPath(p, m)
	}
}

// difference is outer minus hole.
type difference struct {
	outer Rect
	hole  Shape
}

// Difference returns the part of outer not covered by hole, or nil when
// hole covers outer entirely. It is used to find the surface region newly
// exposed by a zoom or pan.
func Difference(outer Rect, hole Shape) Shape {
	if outer.IsEmpty() {
		return nil
	}
	if hole == nil || !hole.IntersectsRect(outer) {
		return outer
	}
	if hole.ContainsRect(outer) {
		return nil
	}
	return &difference{outer: outer, hole: hole}
}

func (d *difference) Bounds() Rect { return d.outer }

func (d *difference) Contains(p Point) bool {
	return d.outer.ContainsPoint(p) && !d.hole.Contains(p)
}

func (d *difference) IntersectsRect(r Rect) bool {
	in := d.outer.Intersect(r)
	if in.IsEmpty() {
		return false
	}
	return !d.hole.ContainsRect(in)
}

func (d *difference) ContainsRect(r Rect) bool {
	return d.outer.ContainsRect(r) && !d.hole.IntersectsRect(r)
}

// AppendPath appends the outer rectangle followed by the hole outline.
// The result describes the difference under the even-odd rule.
func (d *difference) AppendPath(p *Path, m Affine) {
	d.outer.AppendPath(p, m)
	d.hole.AppendPath(p, m)
}
