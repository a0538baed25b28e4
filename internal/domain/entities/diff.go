package entities

import (
	"fmt"
	"strings"
)

// DiffStatus classifies how a slide changed between two presentations
type DiffStatus string

const (
	StatusAdded     DiffStatus = "added"
	StatusRemoved   DiffStatus = "removed"
	StatusModified  DiffStatus = "modified"
	StatusUnchanged DiffStatus = "unchanged"
	StatusMoved     DiffStatus = "moved"
)

// AllStatuses lists every DiffStatus in reporting order
var AllStatuses = []DiffStatus{StatusAdded, StatusRemoved, StatusModified, StatusMoved, StatusUnchanged}

// MatchKind records which matching phase paired two slides
type MatchKind string

const (
	MatchByTitle    MatchKind = "title"
	MatchByPosition MatchKind = "position"
	MatchNone       MatchKind = "none"
)

// LineChangeType is the kind of a single line-diff entry
type LineChangeType string

const (
	LineAdd       LineChangeType = "add"
	LineRemove    LineChangeType = "remove"
	LineUnchanged LineChangeType = "unchanged"
)

// SlideCorrespondence pairs a before-slide with an after-slide. Exactly one
// side is nil for unmatched entries.
type SlideCorrespondence struct {
	Before      *Slide
	After       *Slide
	BeforeIndex *int
	AfterIndex  *int
	MatchedBy   MatchKind
}

// SortKey orders correspondences by before-position, falling back to after-position
func (c SlideCorrespondence) SortKey() int {
	if c.BeforeIndex != nil {
		return *c.BeforeIndex
	}
	if c.AfterIndex != nil {
		return *c.AfterIndex
	}
	return 0
}

// TextDiffEntry is one line of a line-level diff
type TextDiffEntry struct {
	Type  LineChangeType `json:"type" yaml:"type"`
	Value string         `json:"value" yaml:"value"`
	// LineNumber is the 1-based position within the diff output
	LineNumber int `json:"lineNumber" yaml:"lineNumber"`
}

// SlideDiff describes the change of a single slide
type SlideDiff struct {
	Status         DiffStatus      `json:"status" yaml:"status"`
	BeforeSlide    *Slide          `json:"beforeSlide,omitempty" yaml:"beforeSlide,omitempty"`
	AfterSlide     *Slide          `json:"afterSlide,omitempty" yaml:"afterSlide,omitempty"`
	BeforeIndex    *int            `json:"beforeIndex,omitempty" yaml:"beforeIndex,omitempty"`
	AfterIndex     *int            `json:"afterIndex,omitempty" yaml:"afterIndex,omitempty"`
	MatchedBy      MatchKind       `json:"matchedBy" yaml:"matchedBy"`
	ContentChanges []TextDiffEntry `json:"contentChanges,omitempty" yaml:"contentChanges,omitempty"`
	TitleChanged   bool            `json:"titleChanged,omitempty" yaml:"titleChanged,omitempty"`
}

// Title returns the most relevant title for display
func (d SlideDiff) Title() string {
	if d.AfterSlide != nil {
		return d.AfterSlide.Title
	}
	if d.BeforeSlide != nil {
		return d.BeforeSlide.Title
	}
	return ""
}

// LineStats counts added and removed lines in the content changes
func (d SlideDiff) LineStats() (added, removed int) {
	for _, entry := range d.ContentChanges {
		switch entry.Type {
		case LineAdd:
			added++
		case LineRemove:
			removed++
		}
	}
	return added, removed
}

// DiffSummary tallies slide diffs per status
type DiffSummary struct {
	TotalSlidesBefore int `json:"totalSlidesBefore" yaml:"totalSlidesBefore"`
	TotalSlidesAfter  int `json:"totalSlidesAfter" yaml:"totalSlidesAfter"`
	Added             int `json:"added" yaml:"added"`
	Removed           int `json:"removed" yaml:"removed"`
	Modified          int `json:"modified" yaml:"modified"`
	Unchanged         int `json:"unchanged" yaml:"unchanged"`
	Moved             int `json:"moved" yaml:"moved"`
}

// Count returns the tally for a status
func (s DiffSummary) Count(status DiffStatus) int {
	switch status {
	case StatusAdded:
		return s.Added
	case StatusRemoved:
		return s.Removed
	case StatusModified:
		return s.Modified
	case StatusUnchanged:
		return s.Unchanged
	case StatusMoved:
		return s.Moved
	default:
		return 0
	}
}

// Total returns the number of slide diffs the summary covers
func (s DiffSummary) Total() int {
	return s.Added + s.Removed + s.Modified + s.Unchanged + s.Moved
}

// HasChanges reports whether any slide was added, removed, modified or moved
func (s DiffSummary) HasChanges() bool {
	return s.Added+s.Removed+s.Modified+s.Moved > 0
}

// String renders a short summary such as "1 added, 2 modified"
func (s DiffSummary) String() string {
	if !s.HasChanges() {
		return "No changes"
	}

	parts := make([]string, 0, 4)
	for _, status := range []DiffStatus{StatusAdded, StatusRemoved, StatusModified, StatusMoved} {
		if n := s.Count(status); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, ", ")
}

// PresentationDiff is the result of comparing two presentations
type PresentationDiff struct {
	Before     *Presentation `json:"before" yaml:"before"`
	After      *Presentation `json:"after" yaml:"after"`
	SlideDiffs []SlideDiff   `json:"slideDiffs" yaml:"slideDiffs"`
	Summary    DiffSummary   `json:"summary" yaml:"summary"`
}

// HasChanges reports whether the diff contains any change
func (d *PresentationDiff) HasChanges() bool {
	return d != nil && d.Summary.HasChanges()
}

// ChangeSummary returns the short human readable summary
func (d *PresentationDiff) ChangeSummary() string {
	if d == nil {
		return DiffSummary{}.String()
	}
	return d.Summary.String()
}

// Filter returns the slide diffs with one of the given statuses
func (d *PresentationDiff) Filter(statuses ...DiffStatus) []SlideDiff {
	if d == nil {
		return nil
	}

	want := make(map[DiffStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	out := make([]SlideDiff, 0, len(d.SlideDiffs))
	for _, sd := range d.SlideDiffs {
		if want[sd.Status] {
			out = append(out, sd)
		}
	}
	return out
}
