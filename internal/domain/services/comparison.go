package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ComparisonService loads presentations from disk or memory and diffs them
type ComparisonService struct {
	parser ports.PresentationParser
	diff   ports.DiffService
	logger *slog.Logger
}

// NewComparisonService creates a new comparison service instance
func NewComparisonService(parser ports.PresentationParser, diff ports.DiffService, logger *slog.Logger) *ComparisonService {
	if logger == nil {
		logger = slog.Default()
	}
	if diff == nil {
		diff = NewDiffService()
	}

	return &ComparisonService{
		parser: parser,
		diff:   diff,
		logger: logger.With("service", "comparison"),
	}
}

// CompareFiles parses both files and compares them
func (s *ComparisonService) CompareFiles(ctx context.Context, beforePath, afterPath string) (*entities.PresentationDiff, error) {
	before, err := s.LoadPresentation(ctx, beforePath)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}

	after, err := s.LoadPresentation(ctx, afterPath)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}

	diff := s.diff.Compare(before, after)
	s.logSummary(diff, slog.String("before", beforePath), slog.String("after", afterPath))

	return diff, nil
}

// CompareSources parses both markdown sources and compares them. Empty
// sources are valid and yield empty presentations.
func (s *ComparisonService) CompareSources(ctx context.Context, before, after []byte) (*entities.PresentationDiff, error) {
	beforePresentation, err := s.parse(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}

	afterPresentation, err := s.parse(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}

	diff := s.diff.Compare(beforePresentation, afterPresentation)
	s.logSummary(diff)

	return diff, nil
}

// LoadPresentation reads and parses a single presentation file
func (s *ComparisonService) LoadPresentation(ctx context.Context, path string) (*entities.Presentation, error) {
	if path == "" {
		return nil, errors.New("presentation path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("checking presentation file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("presentation path is not a regular file: %s", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("reading presentation: %w", err)
	}

	presentation, err := s.parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Debug("presentation loaded",
		slog.String("path", path),
		slog.Int("slides", presentation.SlideCount()),
	)

	return presentation, nil
}

func (s *ComparisonService) parse(ctx context.Context, content []byte) (*entities.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	presentation, err := s.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}

	return presentation, nil
}

func (s *ComparisonService) logSummary(diff *entities.PresentationDiff, attrs ...any) {
	summary := diff.Summary
	attrs = append(attrs,
		slog.Int("added", summary.Added),
		slog.Int("removed", summary.Removed),
		slog.Int("modified", summary.Modified),
		slog.Int("moved", summary.Moved),
		slog.Int("unchanged", summary.Unchanged),
	)
	s.logger.Debug("presentations compared", attrs...)
}

var _ ports.ComparisonService = (*ComparisonService)(nil)
