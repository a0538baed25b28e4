package services

import (
	"sync"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// DiffService compares two parsed presentations: match, classify, summarize
type DiffService struct {
	classifier *Classifier
	workers    int
}

// DiffOption configures a DiffService
type DiffOption func(*DiffService)

// WithWorkers classifies correspondences on up to n goroutines
func WithWorkers(n int) DiffOption {
	return func(s *DiffService) {
		s.workers = n
	}
}

// WithTextDiffer replaces the line differ used for modified slides
func WithTextDiffer(differ ports.TextDiffer) DiffOption {
	return func(s *DiffService) {
		s.classifier = NewClassifier(differ)
	}
}

// NewDiffService creates a new diff service
func NewDiffService(opts ...DiffOption) *DiffService {
	s := &DiffService{
		classifier: NewClassifier(NewLineDiffer()),
		workers:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare computes the diff between before and after. A nil presentation is
// compared as an empty one.
func (s *DiffService) Compare(before, after *entities.Presentation) *entities.PresentationDiff {
	if before == nil {
		before = &entities.Presentation{}
	}
	if after == nil {
		after = &entities.Presentation{}
	}

	correspondences := MatchSlides(before.Slides, after.Slides)
	slideDiffs := s.classifyAll(correspondences)

	return &entities.PresentationDiff{
		Before:     before,
		After:      after,
		SlideDiffs: slideDiffs,
		Summary:    Summarize(before, after, slideDiffs),
	}
}

// classifyAll classifies every correspondence, keeping their order
func (s *DiffService) classifyAll(correspondences []entities.SlideCorrespondence) []entities.SlideDiff {
	diffs := make([]entities.SlideDiff, len(correspondences))

	if s.workers <= 1 || len(correspondences) < 2 {
		for i, corr := range correspondences {
			diffs[i] = s.classifier.Classify(corr)
		}
		return diffs
	}

	// Each goroutine writes only its own slot
	semaphore := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := range correspondences {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			diffs[i] = s.classifier.Classify(correspondences[i])
		}(i)
	}
	wg.Wait()

	return diffs
}

var _ ports.DiffService = (*DiffService)(nil)
