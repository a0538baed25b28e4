package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// PresentationParserAdapter adapts the MarkdownParser to the PresentationParser interface
type PresentationParserAdapter struct {
	markdownParser ports.MarkdownParser
	chunker        *Chunker
	defaultTitle   string
}

// NewPresentationParserAdapter creates a new presentation parser adapter
func NewPresentationParserAdapter(markdownParser ports.MarkdownParser, cfg entities.ParserConfig) *PresentationParserAdapter {
	return &PresentationParserAdapter{
		markdownParser: markdownParser,
		chunker:        NewChunker(),
		defaultTitle:   cfg.GetDefaultTitle(),
	}
}

// Parse implements the PresentationParser interface
func (p *PresentationParserAdapter) Parse(content []byte) (*entities.Presentation, error) {
	// Parse markdown content
	parsed, err := p.markdownParser.Parse(context.Background(), content)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}

	// Create presentation from parsed content
	presentation := &entities.Presentation{
		Metadata: parsed.Frontmatter,
		Source:   string(content),
		Slides:   make([]entities.Slide, 0, len(parsed.Slides)),
	}

	// Extract metadata
	if title, ok := getStringFromMap(parsed.Frontmatter, "title"); ok {
		presentation.Title = title
	}
	if author, ok := getStringFromMap(parsed.Frontmatter, "author"); ok {
		presentation.Author = author
	}
	if theme, ok := getStringFromMap(parsed.Frontmatter, "theme"); ok {
		presentation.Theme = theme
	}
	presentation.Date = getDateFromMap(parsed.Frontmatter, "date")

	// Convert raw slides to domain entities
	for i, rawSlide := range parsed.Slides {
		slide := entities.Slide{
			ID:        fmt.Sprintf("slide-%d", i+1),
			Index:     i,
			Content:   rawSlide.Content,
			StartLine: rawSlide.StartLine,
			EndLine:   rawSlide.EndLine,
			Notes:     rawSlide.Notes,
		}

		slide.Title = slide.ExtractTitle(p.defaultTitle)
		slide.Chunks = p.chunker.Split(slide.Content)

		presentation.Slides = append(presentation.Slides, slide)
	}

	if presentation.Title == "" && len(presentation.Slides) > 0 {
		presentation.Title = presentation.Slides[0].Title
	}

	// Validate the presentation
	if err := presentation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid presentation: %w", err)
	}

	return presentation, nil
}

// getStringFromMap safely extracts a string value from a map
func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}

	val, exists := m[key]
	if !exists {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}

// getDateFromMap reads a date given as a YAML/TOML date or a YYYY-MM-DD string
func getDateFromMap(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if date, err := time.Parse("2006-01-02", v); err == nil {
			return date
		}
	}
	return time.Time{}
}

// Ensure PresentationParserAdapter implements ports.PresentationParser
var _ ports.PresentationParser = (*PresentationParserAdapter)(nil)
