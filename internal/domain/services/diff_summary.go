package services

import (
	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// Summarize tallies slide diffs per status
func Summarize(before, after *entities.Presentation, diffs []entities.SlideDiff) entities.DiffSummary {
	summary := entities.DiffSummary{
		TotalSlidesBefore: before.SlideCount(),
		TotalSlidesAfter:  after.SlideCount(),
	}

	for _, d := range diffs {
		switch d.Status {
		case entities.StatusAdded:
			summary.Added++
		case entities.StatusRemoved:
			summary.Removed++
		case entities.StatusModified:
			summary.Modified++
		case entities.StatusUnchanged:
			summary.Unchanged++
		case entities.StatusMoved:
			summary.Moved++
		}
	}

	return summary
}
