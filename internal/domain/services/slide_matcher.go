package services

import (
	"sort"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// MatchSlides pairs the slides of two presentations. Slides are first matched
// by normalized title, earlier before-slides claiming the earliest unmatched
// after-slide with the same title. Leftovers are then paired by position
// among the leftovers, and whatever remains becomes a removed-only or
// added-only correspondence. Every index of both inputs appears in exactly
// one correspondence.
//
// Duplicate titles are resolved purely by order, so two unrelated slides that
// share a title can be paired.
func MatchSlides(before, after []entities.Slide) []entities.SlideCorrespondence {
	result := make([]entities.SlideCorrespondence, 0, max(len(before), len(after)))
	beforeMatched := make([]bool, len(before))
	afterMatched := make([]bool, len(after))

	afterTitles := make([]string, len(after))
	for j := range after {
		afterTitles[j] = NormalizeTitle(after[j].Title)
	}

	// Title phase
	for i := range before {
		title := NormalizeTitle(before[i].Title)
		for j := range after {
			if afterMatched[j] || afterTitles[j] != title {
				continue
			}
			beforeMatched[i] = true
			afterMatched[j] = true
			result = append(result, pair(before, after, i, j, entities.MatchByTitle))
			break
		}
	}

	// Position phase
	leftBefore := unmatched(beforeMatched)
	leftAfter := unmatched(afterMatched)
	paired := min(len(leftBefore), len(leftAfter))
	for k := 0; k < paired; k++ {
		result = append(result, pair(before, after, leftBefore[k], leftAfter[k], entities.MatchByPosition))
	}

	// Residue
	for _, i := range leftBefore[paired:] {
		result = append(result, entities.SlideCorrespondence{
			Before:      &before[i],
			BeforeIndex: intPtr(i),
			MatchedBy:   entities.MatchNone,
		})
	}
	for _, j := range leftAfter[paired:] {
		result = append(result, entities.SlideCorrespondence{
			After:      &after[j],
			AfterIndex: intPtr(j),
			MatchedBy:  entities.MatchNone,
		})
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].SortKey() < result[b].SortKey()
	})

	return result
}

func pair(before, after []entities.Slide, i, j int, kind entities.MatchKind) entities.SlideCorrespondence {
	return entities.SlideCorrespondence{
		Before:      &before[i],
		After:       &after[j],
		BeforeIndex: intPtr(i),
		AfterIndex:  intPtr(j),
		MatchedBy:   kind,
	}
}

func unmatched(matched []bool) []int {
	out := make([]int, 0, len(matched))
	for i, ok := range matched {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

func intPtr(i int) *int {
	return &i
}
