package services

import (
	"strings"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// DefaultMaxDiffCells bounds the LCS table of one line diff, about 2048
// lines on each side
const DefaultMaxDiffCells = 1 << 22

// LineDiffer computes line-level diffs using longest common subsequence
// backtracking. Cost is O(m*n) in the two line counts, which suits slide
// sized content. Pairs whose table would exceed maxCells get a linear
// script instead.
type LineDiffer struct {
	maxCells int
}

// NewLineDiffer creates a new line differ
func NewLineDiffer() *LineDiffer {
	return &LineDiffer{maxCells: DefaultMaxDiffCells}
}

// DiffLines returns the edit script turning before into after. Lines are
// compared exactly. When a line is replaced the removal precedes the addition.
func (d *LineDiffer) DiffLines(before, after string) []entities.TextDiffEntry {
	a := splitLines(before)
	b := splitLines(after)
	m, n := len(a), len(b)

	if d.maxCells > 0 && m > 0 && n > d.maxCells/m {
		return numberEntries(coarseScript(a, b))
	}

	// lcs[i][j] is the LCS length of a[:i] and b[:j]
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				lcs[i][j] = lcs[i-1][j-1] + 1
			} else {
				lcs[i][j] = max(lcs[i-1][j], lcs[i][j-1])
			}
		}
	}

	// Backtrack from the bottom-right cell; entries come out reversed
	reversed := make([]entities.TextDiffEntry, 0, m+n)
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			reversed = append(reversed, entities.TextDiffEntry{Type: entities.LineUnchanged, Value: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || lcs[i][j-1] >= lcs[i-1][j]):
			reversed = append(reversed, entities.TextDiffEntry{Type: entities.LineAdd, Value: b[j-1]})
			j--
		default:
			reversed = append(reversed, entities.TextDiffEntry{Type: entities.LineRemove, Value: a[i-1]})
			i--
		}
	}

	for l, r := 0, len(reversed)-1; l < r; l, r = l+1, r-1 {
		reversed[l], reversed[r] = reversed[r], reversed[l]
	}
	return numberEntries(reversed)
}

// coarseScript keeps the common prefix and suffix and replaces the middle
// wholesale: every removal, then every addition. It is a valid script but
// not a minimal one.
func coarseScript(a, b []string) []entities.TextDiffEntry {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	entries := make([]entities.TextDiffEntry, 0, len(a)+len(b)-prefix-suffix)
	for _, line := range a[:prefix] {
		entries = append(entries, entities.TextDiffEntry{Type: entities.LineUnchanged, Value: line})
	}
	for _, line := range a[prefix : len(a)-suffix] {
		entries = append(entries, entities.TextDiffEntry{Type: entities.LineRemove, Value: line})
	}
	for _, line := range b[prefix : len(b)-suffix] {
		entries = append(entries, entities.TextDiffEntry{Type: entities.LineAdd, Value: line})
	}
	for _, line := range a[len(a)-suffix:] {
		entries = append(entries, entities.TextDiffEntry{Type: entities.LineUnchanged, Value: line})
	}
	return entries
}

// numberEntries assigns 1-based line numbers in script order
func numberEntries(entries []entities.TextDiffEntry) []entities.TextDiffEntry {
	for k := range entries {
		entries[k].LineNumber = k + 1
	}
	return entries
}

// splitLines splits on line terminators; the empty string has no lines
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(entities.NormalizeLineEndings(text), "\n")
}

var _ ports.TextDiffer = (*LineDiffer)(nil)
