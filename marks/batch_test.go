package marks

import (
	"testing"

	"github.com/gogpu/carto"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 8},
		{5, 8},
		{8, 8},
		{100, 100},
		{2048, 2048},
		{10000, 2048},
	}
	for _, tt := range tests {
		if got := growth(tt.n); got != tt.want {
			t.Errorf("growth(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestAppendGrow_Capacity(t *testing.T) {
	var s []int
	var caps []int
	for i := range 40 {
		before := cap(s)
		s = appendGrow(s, i)
		if cap(s) != before {
			caps = append(caps, cap(s))
		}
	}
	want := []int{8, 16, 32, 64}
	if len(caps) != len(want) {
		t.Fatalf("capacities = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("capacities = %v, want %v", caps, want)
			break
		}
	}
	if got := trim(s); cap(got) != 40 || len(got) != 40 {
		t.Errorf("trim() len, cap = %d, %d, want 40, 40", len(got), cap(got))
	}
}

func TestAppendGrow_Records(t *testing.T) {
	var s []float32
	s = appendGrow(s, 1, 2, 3, 4, 5, 6)
	s = appendGrow(s, 1, 2, 3, 4, 5, 6)
	if len(s) != 12 || cap(s) < 12 {
		t.Errorf("len, cap = %d, %d, want 12, >= 12", len(s), cap(s))
	}
}

func TestBatch_ClearKeepsCapacity(t *testing.T) {
	var b batch
	for i := range 10 {
		b.appendShape(i, carto.Translate(float64(i), 0), Circle(1))
		b.appendIcon(nil, nil)
		b.appendGlyphs(nil, 0, 0)
	}
	b.check()
	c := cap(b.transforms)
	b.clear()
	if b.Len() != 0 || cap(b.transforms) != c {
		t.Errorf("after clear Len(), cap = %d, %d, want 0, %d", b.Len(), cap(b.transforms), c)
	}
	b.check()
}

func TestBatch_TransformRoundTrip(t *testing.T) {
	var b batch
	m := carto.Affine{A: 0.5, B: -0.25, C: 10, D: 0.25, E: 0.5, F: 20}
	b.appendShape(3, m, Circle(1))
	if got := b.transform(0); got != m {
		t.Errorf("transform(0) = %+v, want %+v", got, m)
	}
	if b.indices[0] != 3 {
		t.Errorf("indices[0] = %d, want 3", b.indices[0])
	}
}

func TestBatch_CheckPanicsOutOfStep(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("check() did not panic")
		}
	}()
	var b batch
	b.appendShape(0, carto.Identity(), Circle(1))
	b.check()
}
