// Package watch re-runs CHAOS scripts as they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Handler is called once per settled change, with the changed path.
type Handler func(ctx context.Context, path string)

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	RunsTriggered int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher debounces filesystem events for one scripts directory and
// forwards settled .chaos/.sn changes to a handler.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	logger      *slog.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

func New(dir string, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:     fsw,
		dir:         dir,
		handler:     handler,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: defaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce adjusts the settle window. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDur = d
}

// Start begins watching the directory. Non-blocking; the event loop
// runs until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		if cerr := w.watcher.Close(); cerr != nil {
			w.logger.Error("Error closing watcher", "error", cerr)
		}
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching scripts directory", "dir", w.dir)

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Error closing watcher", "error", err)
	}
	w.logger.Info("Watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// The ticker drains events that have settled past the debounce
	// window, batching rapid saves into one run.
	flushTicker := time.NewTicker(100 * time.Millisecond)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher context cancelled")
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
			w.logger.Error("Watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-flushTicker.C:
			w.flush(ctx)
		}
	}
}

func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chaos", ".sn":
		return true
	}
	return false
}

// handleEvent records a create or write for a script file. Removes,
// renames and chmods are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isScript(event.Name) {
		return
	}

	var created bool
	switch {
	case event.Op&fsnotify.Create != 0:
		created = true
	case event.Op&fsnotify.Write != 0:
	default:
		return
	}

	w.logger.Debug("Script changed", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	if created {
		w.stats.FilesCreated++
	} else {
		w.stats.FilesModified++
	}
	w.debounceMap[event.Name] = time.Now()
}

// flush forwards every path whose last event has settled.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.stats.RunsTriggered += len(settled)
	w.mu.Unlock()

	for _, path := range settled {
		w.handler(ctx, path)
	}
}

// Stats returns a copy of the current counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Running reports whether the event loop is active.
func (w *Watcher) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
