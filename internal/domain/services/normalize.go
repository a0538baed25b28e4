package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// NormalizeContent canonicalizes slide content for equality checks: line
// endings become "\n", trailing whitespace is stripped from every line and
// the whole text is trimmed.
func NormalizeContent(text string) string {
	lines := strings.Split(entities.NormalizeLineEndings(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// EqualsNormalized reports whether a and b are equal after NormalizeContent
func EqualsNormalized(a, b string) bool {
	if a == b {
		return true
	}
	return NormalizeContent(a) == NormalizeContent(b)
}

// NormalizeTitle trims, collapses internal whitespace and lowercases a title.
// It is only used for matching slides, never for content equality.
func NormalizeTitle(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	return cases.Lower(language.Und).String(collapsed)
}
