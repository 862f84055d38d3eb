// ABOUTME: Collection change events emitted after successful saves and removals
// ABOUTME: Publisher interface with a no-op default and an in-memory recorder

package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markalston/tcg-binder/internal/models"
)

// Event types
const (
	CollectionSaved   = "collection.saved"
	CollectionRemoved = "collection.removed"
)

const source = "tcg-binder"

// CollectionChange describes one mutation of a user's collection
type CollectionChange struct {
	EventType string                   `json:"eventType"`
	EventID   string                   `json:"eventId"`
	Timestamp time.Time                `json:"timestamp"`
	Source    string                   `json:"source"`
	UID       string                   `json:"uid,omitempty"`
	Cards     []models.CollectionEntry `json:"cards,omitempty"`
	Ref       string                   `json:"ref,omitempty"`
}

// NewCollectionSaved builds a saved event for entries
func NewCollectionSaved(uid string, entries []models.CollectionEntry) CollectionChange {
	return CollectionChange{
		EventType: CollectionSaved,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Source:    source,
		UID:       uid,
		Cards:     entries,
	}
}

// NewCollectionRemoved builds a removed event for ref
func NewCollectionRemoved(uid, ref string) CollectionChange {
	return CollectionChange{
		EventType: CollectionRemoved,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Source:    source,
		UID:       uid,
		Ref:       ref,
	}
}

// Key partitions events by user so one user's changes stay ordered
func (e CollectionChange) Key() string {
	if e.UID != "" {
		return e.UID
	}
	if e.Ref != "" {
		return e.Ref
	}
	return e.EventID
}

// Publisher delivers collection change events
type Publisher interface {
	PublishCollectionChange(ctx context.Context, e CollectionChange) error
}

// Nop discards every event
type Nop struct{}

func (Nop) PublishCollectionChange(context.Context, CollectionChange) error { return nil }

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []CollectionChange
}

func (r *Recorder) PublishCollectionChange(_ context.Context, e CollectionChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what has been published so far
func (r *Recorder) Events() []CollectionChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CollectionChange, len(r.events))
	copy(out, r.events)
	return out
}
