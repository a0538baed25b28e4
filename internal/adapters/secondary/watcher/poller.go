package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ErrWatcherStopped is returned when Watch is called on a stopped watcher
var ErrWatcherStopped = errors.New("watcher stopped")

// PollingWatcher detects changes by polling size, mtime and a content digest.
// A single loop serves every watched path and all events share one channel.
//
// Changes are debounced per path on the trailing edge: a change seen within
// the debounce window of the previous event is held back and delivered once
// the window has passed, so the last write of a burst is never lost.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	files   map[string]*fileState
	events  chan ports.FileChangeEvent
	started bool
	stopped bool
	stopCh  chan struct{}
	done    chan struct{}
}

// snapshot is what the poller knows about a file at one point in time
type snapshot struct {
	size    int64
	modTime time.Time
	digest  string
}

type fileState struct {
	snapshot  snapshot
	present   bool
	pending   *ports.ChangeType
	lastEvent time.Time
}

// NewPollingWatcher creates a polling watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		logger:   logger.With("component", "poll_watcher"),
		now:      time.Now,
		files:    make(map[string]*fileState),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Watch adds path to the polled set. The poll loop starts with the first call
// and runs until Stop or until that call's context ends.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	snap, err := takeSnapshot(absPath, nil)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil, ErrWatcherStopped
	}
	if _, ok := w.files[absPath]; !ok {
		w.files[absPath] = &fileState{snapshot: snap, present: true}
	}
	if !w.started {
		w.started = true
		go w.run(ctx)
	}

	return w.events, nil
}

// Stop ends the poll loop and closes the event channel. It is safe to call
// more than once.
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopCh)
	w.mu.Unlock()

	if started {
		<-w.done
	}
	close(w.events)

	return nil
}

func (w *PollingWatcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			for _, event := range w.poll() {
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

// poll checks every watched path once, in path order
func (w *PollingWatcher) poll() []ports.FileChangeEvent {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	w.mu.Unlock()
	sort.Strings(paths)

	var events []ports.FileChangeEvent
	for _, path := range paths {
		if event, ok := w.check(path); ok {
			events = append(events, event)
		}
	}
	return events
}

// check compares path against its last snapshot and reports the event due, if any
func (w *PollingWatcher) check(path string) (ports.FileChangeEvent, bool) {
	w.mu.Lock()
	state := w.files[path]
	var prev *snapshot
	if state.present {
		last := state.snapshot
		prev = &last
	}
	w.mu.Unlock()

	snap, err := takeSnapshot(path, prev)

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case errors.Is(err, os.ErrNotExist):
		if state.present {
			state.present = false
			state.setPending(ports.Deleted)
		}
	case err != nil:
		w.logger.Warn("watch error",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	case !state.present:
		state.present, state.snapshot = true, snap
		state.setPending(ports.Created)
	case snap.digest != state.snapshot.digest:
		state.snapshot = snap
		state.setPending(ports.Modified)
	default:
		// Touched without a content change
		state.snapshot = snap
	}

	if state.pending == nil {
		return ports.FileChangeEvent{}, false
	}

	now := w.now()
	if !state.lastEvent.IsZero() && now.Sub(state.lastEvent) < w.debounce {
		return ports.FileChangeEvent{}, false
	}

	event := ports.FileChangeEvent{Path: path, Type: *state.pending, Timestamp: now}
	state.pending = nil
	state.lastEvent = now
	return event, true
}

// setPending records a change; the latest kind wins within one debounce window
func (s *fileState) setPending(change ports.ChangeType) {
	s.pending = &change
}

// takeSnapshot stats path and hashes it unless size and mtime match prev
func takeSnapshot(path string, prev *snapshot) (snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{size: info.Size(), modTime: info.ModTime()}
	if prev != nil && prev.size == snap.size && prev.modTime.Equal(snap.modTime) {
		snap.digest = prev.digest
		return snap, nil
	}

	snap.digest, err = fileDigest(path)
	if err != nil {
		return snapshot{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return snap, nil
}

// fileDigest returns the hex SHA-256 of a file's content
func fileDigest(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is one the user asked to watch
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

var _ ports.FileWatcher = (*PollingWatcher)(nil)
