// ABOUTME: Toast store: transient notifications that remove themselves
// ABOUTME: Each toast schedules its own removal when added

package stores

import (
	"math/rand"
	"sync"
	"time"

	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/store"
)

// DefaultToastDuration applies when Add is given no duration
const DefaultToastDuration = 3 * time.Second

// Toasts is the list of visible toasts
type Toasts struct {
	List *store.Writable[[]models.Toast]

	defaultDuration time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewToasts creates an empty toast list. A zero defaultDuration means 3s.
func NewToasts(defaultDuration time.Duration) *Toasts {
	if defaultDuration <= 0 {
		defaultDuration = DefaultToastDuration
	}
	return &Toasts{
		List:            store.NewWritable([]models.Toast{}),
		defaultDuration: defaultDuration,
		timers:          make(map[*time.Timer]struct{}),
	}
}

// Add appends a toast and schedules its removal. An empty type means info
// and a zero duration means the store default. Returns the toast id, which
// is random in [0, 10000) and may collide with another toast.
func (t *Toasts) Add(message string, typ models.ToastType, duration time.Duration) int {
	if typ == "" {
		typ = models.ToastInfo
	}
	if duration <= 0 {
		duration = t.defaultDuration
	}
	id := rand.Intn(10000)

	t.List.Update(func(all []models.Toast) []models.Toast {
		next := make([]models.Toast, len(all), len(all)+1)
		copy(next, all)
		return append(next, models.Toast{ID: id, Message: message, Type: typ, Duration: duration})
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return id
	}
	var timer *time.Timer
	timer = time.AfterFunc(duration, func() {
		t.Remove(id)
		t.mu.Lock()
		delete(t.timers, timer)
		t.mu.Unlock()
	})
	t.timers[timer] = struct{}{}

	return id
}

// Remove drops every toast with id. Unknown ids are ignored.
func (t *Toasts) Remove(id int) {
	t.List.Update(func(all []models.Toast) []models.Toast {
		next := make([]models.Toast, 0, len(all))
		for _, toast := range all {
			if toast.ID != id {
				next = append(next, toast)
			}
		}
		return next
	})
}

// Close cancels pending removals. Toasts already shown stay in the list.
func (t *Toasts) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for timer := range t.timers {
		timer.Stop()
		delete(t.timers, timer)
	}
}
