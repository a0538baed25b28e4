package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// LiveDiffService recomputes the diff whenever either presentation changes
// and hands the result to a publisher
type LiveDiffService struct {
	watcher   ports.FileWatcher
	comparer  ports.ComparisonService
	publisher ports.DiffPublisher
	logger    *slog.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	beforePath  string
	afterPath   string

	// serializes recomputations triggered from both event streams
	refreshMu sync.Mutex
}

// NewLiveDiffService creates a new live diff service
func NewLiveDiffService(
	watcher ports.FileWatcher,
	comparer ports.ComparisonService,
	publisher ports.DiffPublisher,
	logger *slog.Logger,
) *LiveDiffService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveDiffService{
		watcher:   watcher,
		comparer:  comparer,
		publisher: publisher,
		logger:    logger.With("service", "live_diff"),
	}
}

// Start watches both files and publishes a new diff after every change
func (s *LiveDiffService) Start(ctx context.Context, beforePath, afterPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)

	beforeEvents, err := s.watcher.Watch(watchCtx, beforePath)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	afterEvents, err := s.watcher.Watch(watchCtx, afterPath)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.beforePath = beforePath
	s.afterPath = afterPath

	go s.handleEvents(watchCtx, beforeEvents)
	// Watchers may share one event channel across paths
	if afterEvents != beforeEvents {
		go s.handleEvents(watchCtx, afterEvents)
	}

	s.logger.Info("Watching presentations",
		slog.String("before", beforePath),
		slog.String("after", afterPath),
	)

	return nil
}

// Stop stops the live diff service
func (s *LiveDiffService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveDiffService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// Refresh recomputes the diff of the watched files and publishes it
func (s *LiveDiffService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	beforePath, afterPath := s.beforePath, s.afterPath
	s.mu.Unlock()

	if beforePath == "" || afterPath == "" {
		return errors.New("no presentations being watched")
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	diff, err := s.comparer.CompareFiles(ctx, beforePath, afterPath)
	if err != nil {
		return fmt.Errorf("comparing presentations: %w", err)
	}

	if err := s.publisher.PublishDiff(ctx, diff); err != nil {
		return fmt.Errorf("publishing diff: %w", err)
	}

	s.logger.Debug("Diff published", slog.String("summary", diff.ChangeSummary()))
	return nil
}

// handleEvents handles file change events
func (s *LiveDiffService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("File change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			if err := s.Refresh(ctx); err != nil {
				// A half-saved file fails to parse; the next save retries
				s.logger.Error("Failed to refresh diff",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
					slog.String("change_type", event.Type.String()),
				)
			}
		}
	}
}
