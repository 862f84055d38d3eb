// ABOUTME: Tests for the observable container
// ABOUTME: Verifies subscription semantics and concurrent updates

package store

import (
	"sync"
	"testing"
)

func TestWritable_GetSet(t *testing.T) {
	w := NewWritable(1)
	if w.Get() != 1 {
		t.Errorf("expected initial value 1, got %d", w.Get())
	}

	w.Set(2)
	if w.Get() != 2 {
		t.Errorf("expected 2 after Set, got %d", w.Get())
	}
}

func TestWritable_SubscribeReceivesCurrentValue(t *testing.T) {
	w := NewWritable("ready")

	var got []string
	unsubscribe := w.Subscribe(func(v string) { got = append(got, v) })
	defer unsubscribe()

	if len(got) != 1 || got[0] != "ready" {
		t.Errorf("expected immediate call with current value, got %v", got)
	}
}

func TestWritable_SubscribersNotifiedInOrder(t *testing.T) {
	w := NewWritable(0)

	var order []string
	w.Subscribe(func(v int) {
		if v > 0 {
			order = append(order, "first")
		}
	})
	w.Subscribe(func(v int) {
		if v > 0 {
			order = append(order, "second")
		}
	})

	w.Set(1)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected subscribers in registration order, got %v", order)
	}
}

func TestWritable_Unsubscribe(t *testing.T) {
	w := NewWritable(0)

	calls := 0
	unsubscribe := w.Subscribe(func(int) { calls++ })
	unsubscribe()
	unsubscribe()

	w.Set(5)

	if calls != 1 {
		t.Errorf("expected only the initial call, got %d calls", calls)
	}
}

func TestWritable_Update(t *testing.T) {
	w := NewWritable([]int{1, 2})

	var seen []int
	w.Subscribe(func(v []int) { seen = v })

	w.Update(func(v []int) []int { return append(v, 3) })

	if len(w.Get()) != 3 {
		t.Errorf("expected 3 elements, got %v", w.Get())
	}
	if len(seen) != 3 {
		t.Errorf("expected subscriber to see update, got %v", seen)
	}
}

func TestWritable_ConcurrentUpdate(t *testing.T) {
	w := NewWritable(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	if w.Get() != 100 {
		t.Errorf("expected 100 after concurrent updates, got %d", w.Get())
	}
}

func TestWritable_ConcurrentWritersDeliverInOrder(t *testing.T) {
	w := NewWritable(0)

	var seen []int
	w.Subscribe(func(v int) { seen = append(seen, v) })

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	if len(seen) != 201 {
		t.Fatalf("expected initial value plus 200 deliveries, got %d", len(seen))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("delivery %d carried %d; values arrived out of order", i, v)
		}
	}
}

func TestWritable_NestedSetDeliveredAfterCurrent(t *testing.T) {
	w := NewWritable(0)

	var first, second []int
	w.Subscribe(func(v int) {
		first = append(first, v)
		if v == 1 {
			w.Set(2)
		}
	})
	w.Subscribe(func(v int) { second = append(second, v) })

	w.Set(1)

	want := []int{0, 1, 2}
	for name, got := range map[string][]int{"first": first, "second": second} {
		if len(got) != len(want) || got[0] != 0 || got[1] != 1 || got[2] != 2 {
			t.Errorf("%s subscriber saw %v, want %v", name, got, want)
		}
	}
}

func TestWritable_ReentrantSet(t *testing.T) {
	w := NewWritable(0)

	w.Subscribe(func(v int) {
		if v == 1 {
			w.Set(2)
		}
	})

	w.Set(1)

	if w.Get() != 2 {
		t.Errorf("expected reentrant Set to apply, got %d", w.Get())
	}
}

func TestWritable_SatisfiesReadable(t *testing.T) {
	var r Readable[int] = NewWritable(7)
	if r.Get() != 7 {
		t.Errorf("expected 7, got %d", r.Get())
	}
}
