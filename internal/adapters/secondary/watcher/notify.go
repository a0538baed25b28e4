package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

const minPendingTick = 10 * time.Millisecond

// NotifyWatcher implements file watching on top of fsnotify. It watches the
// parent directory of every file so that editors which save by renaming a
// temporary file over the original keep producing events.
type NotifyWatcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	events   chan ports.FileChangeEvent

	mu      sync.Mutex
	targets map[string]bool
	dirs    map[string]bool
	pending map[string]pendingChange
	started bool
	stopped bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

type pendingChange struct {
	at         time.Time
	changeType ports.ChangeType
}

// NewNotifyWatcher creates a new fsnotify-based file watcher
func NewNotifyWatcher(debounce time.Duration, logger *slog.Logger) (*NotifyWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotifyWatcher{
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.With("component", "notify_watcher"),
		events:   make(chan ports.FileChangeEvent, 10),
		targets:  make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]pendingChange),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching a file for changes
func (w *NotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil, ErrWatcherStopped
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.targets[absPath] = true

	if !w.started {
		w.started = true
		w.wg.Add(2)
		go func() {
			defer w.wg.Done()
			w.processEvents(ctx)
		}()
		go func() {
			defer w.wg.Done()
			w.processPending(ctx)
		}()
	}

	return w.events, nil
}

// Stop stops the file watcher
func (w *NotifyWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	close(w.events)

	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}

// processEvents records changes to watched files as pending
func (w *NotifyWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// record stores a change for a watched file, ignoring everything else
func (w *NotifyWatcher) record(event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	var changeType ports.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = ports.Created
	case event.Has(fsnotify.Write):
		changeType = ports.Modified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = ports.Deleted
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.targets[name] {
		return
	}

	// Replace-on-save shows up as delete followed by create
	if prev, ok := w.pending[name]; ok && prev.changeType == ports.Deleted && changeType == ports.Created {
		changeType = ports.Modified
	}
	w.pending[name] = pendingChange{at: time.Now(), changeType: changeType}
}

// processPending emits changes that have been quiet for the debounce period
func (w *NotifyWatcher) processPending(ctx context.Context) {
	tick := w.debounce / 2
	if tick < minPendingTick {
		tick = minPendingTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case now := <-ticker.C:
			for _, event := range w.takeSettled(now) {
				select {
				case w.events <- event:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

// takeSettled removes and returns the pending changes older than the debounce
func (w *NotifyWatcher) takeSettled(now time.Time) []ports.FileChangeEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	var settled []ports.FileChangeEvent
	for path, change := range w.pending {
		if now.Sub(change.at) < w.debounce {
			continue
		}
		settled = append(settled, ports.FileChangeEvent{
			Path:      path,
			Type:      change.changeType,
			Timestamp: change.at,
		})
		delete(w.pending, path)
	}
	return settled
}

var _ ports.FileWatcher = (*NotifyWatcher)(nil)
