package services

import (
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// Classifier assigns a DiffStatus to a slide correspondence
type Classifier struct {
	differ ports.TextDiffer
}

// NewClassifier creates a classifier that explains modifications with differ
func NewClassifier(differ ports.TextDiffer) *Classifier {
	if differ == nil {
		differ = NewLineDiffer()
	}
	return &Classifier{differ: differ}
}

// Classify turns a correspondence into a SlideDiff.
//
// Matched pairs are unchanged when their normalized content is equal and
// their positions agree, moved when only the position differs, and modified
// otherwise. The title is part of the content, so a retitled slide is always
// modified; TitleChanged only flags it.
func (c *Classifier) Classify(corr entities.SlideCorrespondence) entities.SlideDiff {
	diff := entities.SlideDiff{
		BeforeSlide: corr.Before,
		AfterSlide:  corr.After,
		BeforeIndex: corr.BeforeIndex,
		AfterIndex:  corr.AfterIndex,
		MatchedBy:   corr.MatchedBy,
	}

	switch {
	case corr.Before == nil && corr.After != nil:
		diff.Status = entities.StatusAdded
		return diff
	case corr.Before != nil && corr.After == nil:
		diff.Status = entities.StatusRemoved
		return diff
	case corr.Before == nil && corr.After == nil:
		// Not produced by MatchSlides
		diff.Status = entities.StatusUnchanged
		return diff
	}

	diff.TitleChanged = corr.Before.Title != corr.After.Title

	contentEqual := EqualsNormalized(corr.Before.Content, corr.After.Content)
	positionEqual := corr.BeforeIndex != nil && corr.AfterIndex != nil && *corr.BeforeIndex == *corr.AfterIndex

	switch {
	case contentEqual && positionEqual:
		diff.Status = entities.StatusUnchanged
	case contentEqual:
		diff.Status = entities.StatusMoved
	default:
		diff.Status = entities.StatusModified
		diff.ContentChanges = c.differ.DiffLines(corr.Before.Content, corr.After.Content)
	}

	return diff
}
