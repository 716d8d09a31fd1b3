package carto

import (
	"sync"
	"testing"
)

func TestRepaintQueue_Coalesce(t *testing.T) {
	q := NewRepaintQueue()
	if _, ok := q.Take(); ok {
		t.Fatal("Take() on empty queue reported pending work")
	}
	q.Post(R(0, 0, 10, 10))
	q.Post(R(50, 50, 10, 10))

	area, ok := q.Take()
	if !ok || area == nil {
		t.Fatalf("Take() = %v, %v, want an area", area, ok)
	}
	want := Rect{MinX: 0, MinY: 0, MaxX: 60, MaxY: 60}
	if got := area.Bounds(); got != want {
		t.Errorf("coalesced bounds = %+v, want %+v", got, want)
	}
	if q.Pending() {
		t.Error("Pending() after Take() = true")
	}
}

func TestRepaintQueue_FullWins(t *testing.T) {
	q := NewRepaintQueue()
	q.Post(R(0, 0, 1, 1))
	q.Post(nil)
	q.Post(R(5, 5, 1, 1))
	area, ok := q.Take()
	if !ok || area != nil {
		t.Errorf("Take() = %v, %v, want nil area meaning whole surface", area, ok)
	}
}

func TestRepaintQueue_Notify(t *testing.T) {
	q := NewRepaintQueue()
	woken := 0
	q.SetWakeup(func() { woken++ })
	q.Post(nil)
	q.Post(nil)
	select {
	case <-q.C():
	default:
		t.Fatal("C() did not signal after Post")
	}
	select {
	case <-q.C():
		t.Error("two posts should coalesce into one signal")
	default:
	}
	if woken != 2 {
		t.Errorf("wakeup called %d times, want 2", woken)
	}
}

func TestRepaintQueue_ConcurrentPost(t *testing.T) {
	q := NewRepaintQueue()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				q.Post(R(float64(i), float64(j), 1, 1))
			}
		}()
	}
	wg.Wait()
	area, ok := q.Take()
	if !ok {
		t.Fatal("Take() found nothing after concurrent posts")
	}
	want := Rect{MinX: 0, MinY: 0, MaxX: 8, MaxY: 100}
	if got := area.Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
}
