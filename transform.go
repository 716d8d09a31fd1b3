package carto

import (
	"fmt"
	"sync"
)

// Transform converts coordinates from a source to a target coordinate system.
type Transform interface {
	Source() *CoordinateSystem
	Target() *CoordinateSystem
	// Apply transforms a single point.
	Apply(p Point) (Point, error)
	// Inverse returns the transform from Target to Source.
	Inverse() (Transform, error)
}

// TransformFactory creates transforms between coordinate systems.
//
// CreateTransform must succeed for equivalent systems and fails with a
// *TransformCreationError when no transform exists.
type TransformFactory interface {
	CreateTransform(src, dst *CoordinateSystem) (Transform, error)
}

// AffineTransform is a Transform backed by an affine matrix.
type AffineTransform struct {
	src, dst *CoordinateSystem
	m        Affine
}

// NewAffineTransform creates an affine transform from src to dst.
func NewAffineTransform(src, dst *CoordinateSystem, m Affine) *AffineTransform {
	return &AffineTransform{src: src, dst: dst, m: m}
}

// IdentityTransform returns the identity transform on cs.
func IdentityTransform(cs *CoordinateSystem) *AffineTransform {
	return &AffineTransform{src: cs, dst: cs, m: Identity()}
}

func (t *AffineTransform) Source() *CoordinateSystem { return t.src }
func (t *AffineTransform) Target() *CoordinateSystem { return t.dst }

// Matrix returns the affine matrix.
func (t *AffineTransform) Matrix() Affine { return t.m }

// Apply transforms p.
func (t *AffineTransform) Apply(p Point) (Point, error) {
	return t.m.TransformPoint(p), nil
}

// Inverse returns the inverse transform, or ErrSingularTransform.
func (t *AffineTransform) Inverse() (Transform, error) {
	inv, err := t.m.Invert()
	if err != nil {
		return nil, fmt.Errorf("carto: invert %s -> %s: %w", t.src, t.dst, err)
	}
	return &AffineTransform{src: t.dst, dst: t.src, m: inv}, nil
}

// FuncTransform is a Transform backed by functions. It models non-linear
// transforms such as map projections supplied by the caller.
type FuncTransform struct {
	src, dst *CoordinateSystem
	forward  func(Point) (Point, error)
	inverse  func(Point) (Point, error)
}

// NewFuncTransform creates a transform from forward and optional inverse
// functions. A nil inverse makes Inverse fail with ErrNotInvertible.
func NewFuncTransform(src, dst *CoordinateSystem, forward, inverse func(Point) (Point, error)) *FuncTransform {
	return &FuncTransform{src: src, dst: dst, forward: forward, inverse: inverse}
}

func (t *FuncTransform) Source() *CoordinateSystem { return t.src }
func (t *FuncTransform) Target() *CoordinateSystem { return t.dst }

// Apply transforms p with the forward function.
func (t *FuncTransform) Apply(p Point) (Point, error) {
	return t.forward(p)
}

// Inverse returns the transform running the inverse function.
func (t *FuncTransform) Inverse() (Transform, error) {
	if t.inverse == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNotInvertible, t.src, t.dst)
	}
	return &FuncTransform{src: t.dst, dst: t.src, forward: t.inverse, inverse: t.forward}, nil
}

// chain applies first then second.
type chain struct {
	first, second Transform
}

func (c *chain) Source() *CoordinateSystem { return c.first.Source() }
func (c *chain) Target() *CoordinateSystem { return c.second.Target() }

func (c *chain) Apply(p Point) (Point, error) {
	q, err := c.first.Apply(p)
	if err != nil {
		return q, err
	}
	return c.second.Apply(q)
}

func (c *chain) Inverse() (Transform, error) {
	a, err := c.second.Inverse()
	if err != nil {
		return nil, err
	}
	b, err := c.first.Inverse()
	if err != nil {
		return nil, err
	}
	return Concatenate(a, b), nil
}

// Concatenate returns the transform applying a then b. Two affine
// transforms collapse into one matrix and identity steps are dropped.
func Concatenate(a, b Transform) Transform {
	am, aok := AsAffine(a)
	bm, bok := AsAffine(b)
	switch {
	case aok && bok:
		return &AffineTransform{src: a.Source(), dst: b.Target(), m: bm.Multiply(am)}
	case aok && am.IsIdentity() && Equivalent(a.Source(), b.Source()):
		return b
	case bok && bm.IsIdentity() && Equivalent(a.Target(), b.Target()):
		return a
	}
	return &chain{first: a, second: b}
}

// AsAffine returns the matrix of t when t is affine.
func AsAffine(t Transform) (Affine, bool) {
	switch v := t.(type) {
	case *AffineTransform:
		return v.m, true
	case interface{ Matrix() Affine }:
		return v.Matrix(), true
	}
	return Affine{}, false
}

// Registry is a TransformFactory over registered transforms. Transforms
// between systems with no direct edge are composed by breadth-first search
// over the registered edges, so registering A->B and B->C makes A->C
// available. Inverse edges are added for invertible transforms.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	edges map[string][]Transform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{edges: make(map[string][]Transform)}
}

// Register adds t and, when available, its inverse.
func (r *Registry) Register(t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(t)
	if inv, err := t.Inverse(); err == nil {
		r.add(inv)
	}
}

// RegisterAffine registers an affine transform from src to dst.
func (r *Registry) RegisterAffine(src, dst *CoordinateSystem, m Affine) {
	r.Register(NewAffineTransform(src, dst, m))
}

// RegisterFunc registers a function transform from src to dst.
func (r *Registry) RegisterFunc(src, dst *CoordinateSystem, forward, inverse func(Point) (Point, error)) {
	r.Register(NewFuncTransform(src, dst, forward, inverse))
}

func (r *Registry) add(t Transform) {
	k := t.Source().key()
	r.edges[k] = append(r.edges[k], t)
}

// CreateTransform implements TransformFactory.
func (r *Registry) CreateTransform(src, dst *CoordinateSystem) (Transform, error) {
	if src == nil || dst == nil {
		return nil, &TransformCreationError{Source: src, Target: dst, Err: ErrNilCoordinateSystem}
	}
	if Equivalent(src, dst) {
		return IdentityTransform(src), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type step struct {
		cs *CoordinateSystem
		t  Transform
	}
	visited := map[string]bool{src.key(): true}
	queue := []step{{cs: src}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range r.edges[cur.cs.key()] {
			next := e.Target()
			if visited[next.key()] {
				continue
			}
			visited[next.key()] = true
			t := e
			if cur.t != nil {
				t = Concatenate(cur.t, e)
			}
			if Equivalent(next, dst) {
				return t, nil
			}
			queue = append(queue, step{cs: next, t: t})
		}
	}
	return nil, &TransformCreationError{Source: src, Target: dst, Err: ErrNoTransformPath}
}
