// ABOUTME: Watches a folder for new card photos
// ABOUTME: Each photo is handed off once it has stopped changing for the settle window

package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must be quiet before it is handed off
const DefaultSettle = 500 * time.Millisecond

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsImage reports whether path has a scannable image extension
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Watcher reports settled image files in one directory
type Watcher struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	pending map[string]time.Time
}

// New starts watching dir. Call Run to receive files and Close when done.
func New(dir string, settle time.Duration, logger *slog.Logger) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		settle:  settle,
		watcher: fw,
		logger:  logger,
		pending: make(map[string]time.Time),
	}, nil
}

// Run calls fn for each settled image, one at a time, until ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, path string)) error {
	w.logger.Info("Watching inbox", "dir", w.dir)

	tick := w.settle / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Inbox watcher error", "error", err)

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				fn(ctx, path)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsImage(event.Name) {
		return
	}
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.pending[event.Name] = time.Now()
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.pending, event.Name)
	}
}

// settled removes and returns the paths quiet for at least the settle window
func (w *Watcher) settled(now time.Time) []string {
	type quiet struct {
		path string
		last time.Time
	}
	var due []quiet
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			due = append(due, quiet{path, last})
			delete(w.pending, path)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].last.Equal(due[j].last) {
			return due[i].last.Before(due[j].last)
		}
		return due[i].path < due[j].path
	})

	ready := make([]string, 0, len(due))
	for _, q := range due {
		ready = append(ready, q.path)
	}
	return ready
}

// Close stops the underlying watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
