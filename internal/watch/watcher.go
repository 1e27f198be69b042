// Package watch triggers report regeneration when the description database
// changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"archreport/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per settled burst of database writes.
type Handler func(ctx context.Context) error

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Triggers  int
	Errors    int
	LastEvent time.Time
	LastPath  string
}

// DBWatcher watches a SQLite database file (and its WAL and journal files)
// and calls a handler after writes settle for the debounce duration.
type DBWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	names       map[string]bool
	handler     Handler
	debounceDur time.Duration
	tick        time.Duration
	pending     time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// NewDBWatcher creates a watcher for the database at dbPath.
func NewDBWatcher(dbPath string, debounce time.Duration, handler Handler) (*DBWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	base := filepath.Base(abs)
	tick := debounce / 5
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	return &DBWatcher{
		watcher:     watcher,
		dir:         filepath.Dir(abs),
		names:       map[string]bool{base: true, base + "-wal": true, base + "-journal": true},
		handler:     handler,
		debounceDur: debounce,
		tick:        tick,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *DBWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// The directory is watched rather than the file so WAL checkpoints and
	// file replacement are seen.
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("Watching %s for database changes", w.dir)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *DBWatcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", err)
	}
}

// Done is closed when the event loop exits.
func (w *DBWatcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a snapshot of watcher activity.
func (w *DBWatcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *DBWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.fireIfSettled(ctx)
		}
	}
}

func (w *DBWatcher) handleEvent(event fsnotify.Event) {
	if !w.names[filepath.Base(event.Name)] {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	logging.WatchDebug("%s %s", event.Op, event.Name)

	w.mu.Lock()
	now := time.Now()
	w.pending = now
	w.stats.Events++
	w.stats.LastEvent = now
	w.stats.LastPath = event.Name
	w.mu.Unlock()
}

func (w *DBWatcher) fireIfSettled(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.stats.Triggers++
	w.mu.Unlock()

	if err := w.handler(ctx); err != nil {
		logging.Get(logging.CategoryWatch).Error("regeneration failed: %v", err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
	}
}
