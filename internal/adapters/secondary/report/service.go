package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ErrUnsupportedFormat is returned for a format no renderer is registered for
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Service selects report renderers by format name
type Service struct {
	renderers map[string]ports.ReportRenderer
}

// NewService creates a report service with the built-in renderers. Extra
// renderers replace built-ins of the same format.
func NewService(extra ...ports.ReportRenderer) *Service {
	s := &Service{renderers: make(map[string]ports.ReportRenderer)}

	s.RegisterRenderer(NewTextRenderer())
	s.RegisterRenderer(NewMarkdownRenderer())
	s.RegisterRenderer(NewJSONRenderer())
	s.RegisterRenderer(NewYAMLRenderer())
	s.RegisterRenderer(NewHTMLRenderer())

	for _, r := range extra {
		s.RegisterRenderer(r)
	}

	return s
}

// RegisterRenderer registers a renderer under its format name
func (s *Service) RegisterRenderer(renderer ports.ReportRenderer) {
	s.renderers[renderer.Format()] = renderer
}

// Render writes the report for diff in the requested format
func (s *Service) Render(ctx context.Context, w io.Writer, format string, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	renderer, ok := s.renderers[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if diff == nil {
		diff = &entities.PresentationDiff{}
	}

	if err := renderer.Render(ctx, w, diff, opts); err != nil {
		return fmt.Errorf("rendering %s report: %w", format, err)
	}

	return nil
}

// GetSupportedFormats returns the registered format names, sorted
func (s *Service) GetSupportedFormats() []string {
	formats := make([]string, 0, len(s.renderers))
	for format := range s.renderers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

var _ ports.ReportService = (*Service)(nil)
