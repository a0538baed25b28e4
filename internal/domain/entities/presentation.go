package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSlideIndex is returned when a slide index is out of range
var ErrInvalidSlideIndex = errors.New("invalid slide index")

// Presentation represents a markdown document parsed into ordered slides
type Presentation struct {
	// ID is a unique identifier for the presentation
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the presentation title
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Theme is carried through from frontmatter
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`

	// Author is the presentation creator
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Date is when the presentation was created/updated
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Metadata contains any additional frontmatter fields
	Metadata map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Source is the original markdown text
	Source string `json:"-" yaml:"-"`

	// Slides contains all presentation slides in order
	Slides []Slide `json:"slides" yaml:"slides"`
}

// Validate ensures every slide is well formed and slide ids are unique
func (p *Presentation) Validate() error {
	seen := make(map[string]int, len(p.Slides))

	for i, slide := range p.Slides {
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
		if prev, ok := seen[slide.ID]; ok {
			return fmt.Errorf("slide %d reuses id %q of slide %d", i+1, slide.ID, prev+1)
		}
		seen[slide.ID] = i
	}

	return nil
}

// GetSlideByIndex returns a slide by its index (0-based)
func (p *Presentation) GetSlideByIndex(index int) (*Slide, error) {
	if err := p.checkIndex(index, len(p.Slides)); err != nil {
		return nil, err
	}
	return &p.Slides[index], nil
}

// SlideCount returns the total number of slides
func (p *Presentation) SlideCount() int {
	if p == nil {
		return 0
	}
	return len(p.Slides)
}

// InsertSlide inserts a slide at index; index may equal SlideCount to append
func (p *Presentation) InsertSlide(index int, slide Slide) error {
	if err := p.checkIndex(index, len(p.Slides)+1); err != nil {
		return err
	}

	p.Slides = append(p.Slides, Slide{})
	copy(p.Slides[index+1:], p.Slides[index:])
	p.Slides[index] = slide
	p.reindex()
	return nil
}

// RemoveSlide removes and returns the slide at index
func (p *Presentation) RemoveSlide(index int) (Slide, error) {
	if err := p.checkIndex(index, len(p.Slides)); err != nil {
		return Slide{}, err
	}

	removed := p.Slides[index]
	p.Slides = append(p.Slides[:index], p.Slides[index+1:]...)
	p.reindex()
	return removed, nil
}

// ReplaceSlide replaces the slide at index
func (p *Presentation) ReplaceSlide(index int, slide Slide) error {
	if err := p.checkIndex(index, len(p.Slides)); err != nil {
		return err
	}

	p.Slides[index] = slide
	p.reindex()
	return nil
}

// MoveSlide moves the slide at from so that it ends up at to
func (p *Presentation) MoveSlide(from, to int) error {
	if err := p.checkIndex(from, len(p.Slides)); err != nil {
		return err
	}
	if err := p.checkIndex(to, len(p.Slides)); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	slide := p.Slides[from]
	if from < to {
		copy(p.Slides[from:to], p.Slides[from+1:to+1])
	} else {
		copy(p.Slides[to+1:from+1], p.Slides[to:from])
	}
	p.Slides[to] = slide
	p.reindex()
	return nil
}

func (p *Presentation) checkIndex(index, limit int) error {
	if index < 0 || index >= limit {
		return fmt.Errorf("%w: %d (valid range 0-%d)", ErrInvalidSlideIndex, index, limit-1)
	}
	return nil
}

func (p *Presentation) reindex() {
	for i := range p.Slides {
		p.Slides[i].Index = i
	}
}
