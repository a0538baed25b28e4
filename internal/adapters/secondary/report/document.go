package report

import (
	"fmt"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

const defaultReportTitle = "Slide diff"

// Document is the serializable view of a diff shared by the structured formats
type Document struct {
	Title      string               `json:"title" yaml:"title"`
	HasChanges bool                 `json:"hasChanges" yaml:"hasChanges"`
	Text       string               `json:"text" yaml:"text"`
	Summary    entities.DiffSummary `json:"summary" yaml:"summary"`
	Slides     []SlideEntry         `json:"slides" yaml:"slides"`
}

// SlideEntry describes one reported slide
type SlideEntry struct {
	Status       entities.DiffStatus      `json:"status" yaml:"status"`
	Title        string                   `json:"title" yaml:"title"`
	BeforeTitle  string                   `json:"beforeTitle,omitempty" yaml:"beforeTitle,omitempty"`
	BeforeIndex  *int                     `json:"beforeIndex,omitempty" yaml:"beforeIndex,omitempty"`
	AfterIndex   *int                     `json:"afterIndex,omitempty" yaml:"afterIndex,omitempty"`
	MatchedBy    entities.MatchKind       `json:"matchedBy" yaml:"matchedBy"`
	TitleChanged bool                     `json:"titleChanged,omitempty" yaml:"titleChanged,omitempty"`
	LinesAdded   int                      `json:"linesAdded,omitempty" yaml:"linesAdded,omitempty"`
	LinesRemoved int                      `json:"linesRemoved,omitempty" yaml:"linesRemoved,omitempty"`
	Changes      []entities.TextDiffEntry `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// NewDocument builds the report view of diff. Unchanged slides are left out
// unless opts.ShowUnchanged is set.
func NewDocument(diff *entities.PresentationDiff, opts ports.ReportOptions) Document {
	doc := Document{
		Title:      reportTitle(opts),
		HasChanges: diff.HasChanges(),
		Text:       diff.ChangeSummary(),
		Summary:    diff.Summary,
		Slides:     make([]SlideEntry, 0, len(diff.SlideDiffs)),
	}

	for _, sd := range visibleDiffs(diff, opts) {
		entry := SlideEntry{
			Status:       sd.Status,
			Title:        sd.Title(),
			BeforeIndex:  sd.BeforeIndex,
			AfterIndex:   sd.AfterIndex,
			MatchedBy:    sd.MatchedBy,
			TitleChanged: sd.TitleChanged,
			Changes:      sd.ContentChanges,
		}
		if sd.TitleChanged && sd.BeforeSlide != nil {
			entry.BeforeTitle = sd.BeforeSlide.Title
		}
		entry.LinesAdded, entry.LinesRemoved = sd.LineStats()
		doc.Slides = append(doc.Slides, entry)
	}

	return doc
}

func reportTitle(opts ports.ReportOptions) string {
	if opts.Title != "" {
		return opts.Title
	}
	return defaultReportTitle
}

func visibleDiffs(diff *entities.PresentationDiff, opts ports.ReportOptions) []entities.SlideDiff {
	if opts.ShowUnchanged {
		return diff.SlideDiffs
	}
	return diff.Filter(entities.StatusAdded, entities.StatusRemoved, entities.StatusModified, entities.StatusMoved)
}

// position renders a 1-based slide position, or "-" when absent
func position(index *int) string {
	if index == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", *index+1)
}

// positions renders the before/after positions of a slide diff
func positions(sd entities.SlideDiff) string {
	switch {
	case sd.BeforeIndex == nil:
		return position(sd.AfterIndex)
	case sd.AfterIndex == nil:
		return position(sd.BeforeIndex)
	default:
		return position(sd.BeforeIndex) + " -> " + position(sd.AfterIndex)
	}
}

// diffLines renders line changes in unified-diff style
func diffLines(changes []entities.TextDiffEntry) []string {
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		switch c.Type {
		case entities.LineAdd:
			lines = append(lines, "+"+c.Value)
		case entities.LineRemove:
			lines = append(lines, "-"+c.Value)
		default:
			lines = append(lines, " "+c.Value)
		}
	}
	return lines
}
