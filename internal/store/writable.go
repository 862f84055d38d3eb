// ABOUTME: Observable value container shared between components
// ABOUTME: Subscribers receive the current value immediately and on every change

package store

import "sync"

// Readable is the read side of a container
type Readable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (unsubscribe func())
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

type delivery[T any] struct {
	subs  []subscriber[T]
	value T
}

// Writable holds a value and notifies subscribers when it changes.
// Safe for concurrent use. Subscribers see values in the order they were
// set, even when writers race. Delivery runs outside the lock, so a
// subscriber may read or write the container again; a nested write is
// delivered after the current one finishes.
type Writable[T any] struct {
	mu         sync.RWMutex
	value      T
	subs       []subscriber[T]
	nextID     int
	queue      []delivery[T]
	delivering bool
}

// NewWritable creates a container holding initial
func NewWritable[T any](initial T) *Writable[T] {
	return &Writable[T]{value: initial}
}

// Get returns the current value
func (w *Writable[T]) Get() T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value
}

// Set replaces the value and notifies subscribers
func (w *Writable[T]) Set(v T) {
	w.mu.Lock()
	w.value = v
	w.enqueue(w.snapshot(), v)
}

// Update replaces the value with fn(current) atomically and notifies subscribers
func (w *Writable[T]) Update(fn func(T) T) {
	w.mu.Lock()
	v := fn(w.value)
	w.value = v
	w.enqueue(w.snapshot(), v)
}

// Subscribe registers fn, calls it with the current value, and returns a
// function that removes the subscription. Calling it twice is safe.
func (w *Writable[T]) Subscribe(fn func(T)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	sub := subscriber[T]{id: id, fn: fn}
	w.subs = append(w.subs, sub)
	w.enqueue([]subscriber[T]{sub}, w.value)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.subs {
			if s.id == id {
				w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
				return
			}
		}
	}
}

// enqueue is called with mu held and releases it. The goroutine that finds
// no delivery in progress drains the queue in order.
func (w *Writable[T]) enqueue(subs []subscriber[T], v T) {
	if len(subs) > 0 {
		w.queue = append(w.queue, delivery[T]{subs: subs, value: v})
	}
	if w.delivering || len(w.queue) == 0 {
		w.mu.Unlock()
		return
	}
	w.delivering = true
	for len(w.queue) > 0 {
		next := w.queue[0]
		w.queue[0] = delivery[T]{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		for _, s := range next.subs {
			s.fn(next.value)
		}

		w.mu.Lock()
	}
	w.queue = nil
	w.delivering = false
	w.mu.Unlock()
}

func (w *Writable[T]) snapshot() []subscriber[T] {
	if len(w.subs) == 0 {
		return nil
	}
	out := make([]subscriber[T], len(w.subs))
	copy(out, w.subs)
	return out
}
