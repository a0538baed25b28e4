package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// PresentationParser defines the interface for parsing markdown presentations
type PresentationParser interface {
	// Parse converts markdown content into a presentation
	Parse(content []byte) (*entities.Presentation, error)
}

// TextDiffer computes a line-level edit script between two texts
type TextDiffer interface {
	DiffLines(before, after string) []entities.TextDiffEntry
}

// DiffService compares two already-parsed presentations
type DiffService interface {
	Compare(before, after *entities.Presentation) *entities.PresentationDiff
}

// ComparisonService loads, parses and compares presentations
type ComparisonService interface {
	// CompareFiles parses both files and compares them
	CompareFiles(ctx context.Context, beforePath, afterPath string) (*entities.PresentationDiff, error)

	// CompareSources parses both markdown sources and compares them
	CompareSources(ctx context.Context, before, after []byte) (*entities.PresentationDiff, error)

	// LoadPresentation parses a single presentation file
	LoadPresentation(ctx context.Context, path string) (*entities.Presentation, error)
}

// ReportOptions controls how a diff report is rendered
type ReportOptions struct {
	Title         string
	ShowUnchanged bool
	Color         bool
	ImageBaseURL  string

	// LiveReload makes the HTML report reload itself on diff_updated events
	LiveReload bool
}

// ReportRenderer renders a presentation diff in one output format
type ReportRenderer interface {
	// Format returns the format name, e.g. "json"
	Format() string

	// Render writes the report for diff to w
	Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ReportOptions) error
}

// ReportService selects report renderers by format
type ReportService interface {
	Render(ctx context.Context, w io.Writer, format string, diff *entities.PresentationDiff, opts ReportOptions) error
	GetSupportedFormats() []string
}

// DiffPublisher receives freshly computed diffs
type DiffPublisher interface {
	PublishDiff(ctx context.Context, diff *entities.PresentationDiff) error
}
