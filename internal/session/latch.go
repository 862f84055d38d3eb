// ABOUTME: Single-assignment future used for the session readiness signal
// ABOUTME: The first Resolve wins and wakes every current and future waiter

package session

import (
	"context"
	"sync"
)

// Latch is resolved at most once. Waiters block until then or until their
// context ends.
type Latch[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

// NewLatch creates an unresolved latch
func NewLatch[T any]() *Latch[T] {
	return &Latch[T]{done: make(chan struct{})}
}

// Resolve stores v and releases waiters. Returns false if already resolved.
func (l *Latch[T]) Resolve(v T) bool {
	resolved := false
	l.once.Do(func() {
		l.value = v
		close(l.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel closed on resolution
func (l *Latch[T]) Done() <-chan struct{} {
	return l.done
}

// Resolved reports whether Resolve has been called
func (l *Latch[T]) Resolved() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Value returns the resolved value, or false if unresolved
func (l *Latch[T]) Value() (T, bool) {
	if !l.Resolved() {
		var zero T
		return zero, false
	}
	return l.value, true
}

// Wait blocks until resolution and returns the resolved value
func (l *Latch[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-l.done:
		return l.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
