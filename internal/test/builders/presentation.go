package builders

import (
	"strconv"
	"strings"
	"time"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// PresentationBuilder helps build Presentation entities for testing
type PresentationBuilder struct {
	presentation *entities.Presentation
}

// NewPresentationBuilder creates a new presentation builder with sensible defaults
func NewPresentationBuilder() *PresentationBuilder {
	return &PresentationBuilder{
		presentation: &entities.Presentation{
			Title:    "Test Presentation",
			Author:   "Test Author",
			Date:     time.Now(),
			Slides:   []entities.Slide{},
			Metadata: make(map[string]interface{}),
		},
	}
}

// WithTitle sets the presentation title
func (b *PresentationBuilder) WithTitle(title string) *PresentationBuilder {
	b.presentation.Title = title
	return b
}

// WithAuthor sets the presentation author
func (b *PresentationBuilder) WithAuthor(author string) *PresentationBuilder {
	b.presentation.Author = author
	return b
}

// WithSlides sets the presentation slides
func (b *PresentationBuilder) WithSlides(slides []entities.Slide) *PresentationBuilder {
	b.presentation.Slides = slides
	return b
}

// WithSlide adds a single slide to the presentation
func (b *PresentationBuilder) WithSlide(slide entities.Slide) *PresentationBuilder {
	b.presentation.Slides = append(b.presentation.Slides, slide)
	return b
}

// WithTitledSlide appends a slide whose content is "# title\n\nbody"
func (b *PresentationBuilder) WithTitledSlide(title, body string) *PresentationBuilder {
	slide := NewSlideBuilder().
		WithID(len(b.presentation.Slides) + 1).
		WithTitle(title).
		WithBody(body).
		Build()
	b.presentation.Slides = append(b.presentation.Slides, slide)
	return b
}

// WithSlideCount adds the specified number of default slides
func (b *PresentationBuilder) WithSlideCount(count int) *PresentationBuilder {
	for i := 0; i < count; i++ {
		slide := NewSlideBuilder().
			WithID(len(b.presentation.Slides) + 1).
			WithTitle("Slide " + strconv.Itoa(i+1)).
			Build()
		b.presentation.Slides = append(b.presentation.Slides, slide)
	}
	return b
}

// WithMetadata sets custom metadata
func (b *PresentationBuilder) WithMetadata(key string, value interface{}) *PresentationBuilder {
	if b.presentation.Metadata == nil {
		b.presentation.Metadata = make(map[string]interface{})
	}
	b.presentation.Metadata[key] = value
	return b
}

// Build creates the final Presentation entity with indices and line ranges
// laid out as if the slides were consecutive in one document
func (b *PresentationBuilder) Build() *entities.Presentation {
	slides := append([]entities.Slide{}, b.presentation.Slides...)
	sources := make([]string, 0, len(slides))
	line := 1
	for i := range slides {
		slides[i].Index = i
		count := strings.Count(slides[i].Content, "\n") + 1
		if slides[i].StartLine == 0 {
			slides[i].StartLine = line
			slides[i].EndLine = line + count - 1
		}
		line += count + 1
		sources = append(sources, slides[i].Content)
	}

	// Deep copy to prevent mutation
	return &entities.Presentation{
		Title:    b.presentation.Title,
		Author:   b.presentation.Author,
		Date:     b.presentation.Date,
		Source:   strings.Join(sources, "\n\n"),
		Slides:   slides,
		Metadata: copyMetadata(b.presentation.Metadata),
	}
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
	body  string
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: &entities.Slide{
			ID:       "slide-1",
			Index:    0,
			Title:    "Test Slide",
			Content:  "# Test Slide\n\nTest content",
			Metadata: make(map[string]interface{}),
		},
		body: "Test content",
	}
}

// WithID sets the slide ID
func (b *SlideBuilder) WithID(id int) *SlideBuilder {
	b.slide.ID = "slide-" + strconv.Itoa(id)
	b.slide.Index = id - 1 // Convert to 0-based index
	return b
}

// WithTitle sets the slide title and its heading line
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = title
	b.slide.Content = "# " + title + "\n\n" + b.body
	return b
}

// WithBody sets the text below the heading line
func (b *SlideBuilder) WithBody(body string) *SlideBuilder {
	b.body = body
	b.slide.Content = "# " + b.slide.Title + "\n\n" + body
	return b
}

// WithContent sets the raw content without touching the title
func (b *SlideBuilder) WithContent(content string) *SlideBuilder {
	b.slide.Content = content
	return b
}

// WithLines sets the source line range
func (b *SlideBuilder) WithLines(start, end int) *SlideBuilder {
	b.slide.StartLine = start
	b.slide.EndLine = end
	return b
}

// WithNotes sets the slide speaker notes
func (b *SlideBuilder) WithNotes(notes string) *SlideBuilder {
	b.slide.Notes = notes
	return b
}

// WithMetadata sets custom metadata
func (b *SlideBuilder) WithMetadata(key string, value interface{}) *SlideBuilder {
	if b.slide.Metadata == nil {
		b.slide.Metadata = make(map[string]interface{})
	}
	b.slide.Metadata[key] = value
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return entities.Slide{
		ID:        b.slide.ID,
		Index:     b.slide.Index,
		Title:     b.slide.Title,
		Content:   b.slide.Content,
		StartLine: b.slide.StartLine,
		EndLine:   b.slide.EndLine,
		Notes:     b.slide.Notes,
		Metadata:  copyMetadata(b.slide.Metadata),
	}
}

// copyMetadata creates a deep copy of metadata map
func copyMetadata(original map[string]interface{}) map[string]interface{} {
	if original == nil {
		return nil
	}
	copy := make(map[string]interface{})
	for k, v := range original {
		copy[k] = v
	}
	return copy
}

// Common presentation types for testing

// MinimalPresentation creates a minimal presentation for basic tests
func MinimalPresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargePresentation creates a presentation with many slides for performance tests
func LargePresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Large Presentation").
		WithSlideCount(120).
		Build()
}
