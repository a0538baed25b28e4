package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffSummary_String(t *testing.T) {
	tests := []struct {
		name    string
		summary DiffSummary
		want    string
	}{
		{name: "no changes", summary: DiffSummary{Unchanged: 3}, want: "No changes"},
		{name: "empty", summary: DiffSummary{}, want: "No changes"},
		{name: "single status", summary: DiffSummary{Added: 1, Unchanged: 1}, want: "1 added"},
		{
			name:    "all statuses in order",
			summary: DiffSummary{Added: 1, Removed: 2, Modified: 3, Moved: 4, Unchanged: 5},
			want:    "1 added, 2 removed, 3 modified, 4 moved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.String())
		})
	}
}

func TestDiffSummary_HasChanges(t *testing.T) {
	assert.False(t, DiffSummary{Unchanged: 10, TotalSlidesBefore: 10, TotalSlidesAfter: 10}.HasChanges())
	assert.True(t, DiffSummary{Moved: 1}.HasChanges())
	assert.True(t, DiffSummary{Removed: 1}.HasChanges())

	s := DiffSummary{Added: 1, Removed: 1, Modified: 1, Moved: 1, Unchanged: 1}
	assert.Equal(t, 5, s.Total())
	for _, status := range AllStatuses {
		assert.Equal(t, 1, s.Count(status))
	}
	assert.Equal(t, 0, s.Count(DiffStatus("bogus")))
}

func TestPresentationDiff_Helpers(t *testing.T) {
	var nilDiff *PresentationDiff
	assert.False(t, nilDiff.HasChanges())
	assert.Equal(t, "No changes", nilDiff.ChangeSummary())
	assert.Nil(t, nilDiff.Filter(StatusAdded))

	before := &Slide{ID: "a", Title: "Old"}
	after := &Slide{ID: "b", Title: "New"}
	diff := &PresentationDiff{
		SlideDiffs: []SlideDiff{
			{Status: StatusModified, BeforeSlide: before, AfterSlide: after, ContentChanges: []TextDiffEntry{
				{Type: LineRemove, Value: "x", LineNumber: 1},
				{Type: LineAdd, Value: "y", LineNumber: 2},
				{Type: LineAdd, Value: "z", LineNumber: 3},
				{Type: LineUnchanged, Value: "w", LineNumber: 4},
			}},
			{Status: StatusRemoved, BeforeSlide: before},
			{Status: StatusUnchanged, BeforeSlide: before, AfterSlide: before},
		},
		Summary: DiffSummary{Modified: 1, Removed: 1, Unchanged: 1},
	}

	assert.True(t, diff.HasChanges())
	assert.Equal(t, "1 removed, 1 modified", diff.ChangeSummary())
	assert.Len(t, diff.Filter(StatusModified, StatusRemoved), 2)

	assert.Equal(t, "New", diff.SlideDiffs[0].Title())
	assert.Equal(t, "Old", diff.SlideDiffs[1].Title())
	assert.Equal(t, "", SlideDiff{}.Title())

	added, removed := diff.SlideDiffs[0].LineStats()
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
}

func TestSlideCorrespondence_SortKey(t *testing.T) {
	two, five := 2, 5

	assert.Equal(t, 2, SlideCorrespondence{BeforeIndex: &two, AfterIndex: &five}.SortKey())
	assert.Equal(t, 5, SlideCorrespondence{AfterIndex: &five}.SortKey())
	assert.Equal(t, 0, SlideCorrespondence{}.SortKey())
}
