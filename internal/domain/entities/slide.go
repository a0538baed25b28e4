package entities

import (
	"errors"
	"strings"
)

// DefaultSlideTitle is used when a slide has no heading
const DefaultSlideTitle = "Untitled"

// Slide represents a single slide in a presentation
type Slide struct {
	// ID is a unique identifier for the slide within its presentation
	ID string `json:"id" yaml:"id"`

	// Index is the slide position in the presentation (0-based)
	Index int `json:"index" yaml:"index"`

	// Title is extracted from the first heading or synthesized
	Title string `json:"title" yaml:"title"`

	// Content is the raw markdown content of the slide, heading line included
	Content string `json:"content" yaml:"content"`

	// StartLine and EndLine are the 1-based inclusive source line range
	StartLine int `json:"startLine" yaml:"startLine"`
	EndLine   int `json:"endLine" yaml:"endLine"`

	// Notes contains speaker notes collected from "Note:" lines
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Chunks is the content split into markdown and fenced blocks
	Chunks []Chunk `json:"chunks,omitempty" yaml:"chunks,omitempty"`

	// Metadata contains slide-specific attributes (if any)
	Metadata map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate ensures the slide is well formed
func (s *Slide) Validate() error {
	if s.ID == "" {
		return errors.New("slide id cannot be empty")
	}

	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}

	if s.StartLine > 0 && s.EndLine < s.StartLine {
		return errors.New("slide end line must not precede start line")
	}

	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeLineEndings rewrites CRLF and lone CR line breaks as LF
func NormalizeLineEndings(text string) string {
	return lineBreaks.Replace(text)
}

// ExtractTitle returns the text of the first heading in the slide content,
// or fallback when the slide has none
func (s *Slide) ExtractTitle(fallback string) string {
	if fallback == "" {
		fallback = DefaultSlideTitle
	}

	lines := strings.Split(NormalizeLineEndings(s.Content), "\n")
	inFence := false
	fence := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))

		// Fences indented four or more spaces are code block text
		if marker := fenceMarker(trimmed); marker != "" && indent <= 3 {
			if !inFence {
				inFence, fence = true, marker
			} else if strings.HasPrefix(trimmed, fence) && strings.TrimLeft(trimmed, fence[:1]) == "" {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}

		if title, ok := atxHeadingText(trimmed); ok {
			return title
		}

		// Setext heading: text underlined by === or ---
		if trimmed != "" && i+1 < len(lines) && !strings.HasPrefix(trimmed, "- ") {
			next := strings.TrimSpace(lines[i+1])
			if isSetextUnderline(next) {
				return trimmed
			}
		}
	}

	return fallback
}

// HasNotes returns true if the slide has speaker notes
func (s *Slide) HasNotes() bool {
	return strings.TrimSpace(s.Notes) != ""
}

// LineCount returns the number of source lines covered by the slide
func (s *Slide) LineCount() int {
	if s.StartLine == 0 && s.EndLine == 0 {
		return 0
	}
	return s.EndLine - s.StartLine + 1
}

// atxHeadingText returns the text of an ATX heading line ("## Title ##")
func atxHeadingText(line string) (string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return "", false
	}

	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}

	text := strings.TrimSpace(rest)
	// A closing sequence only counts when separated by a space ("C#" keeps its hash)
	if stripped := strings.TrimRight(text, "#"); stripped == "" || strings.HasSuffix(stripped, " ") {
		text = strings.TrimSpace(stripped)
	}
	if text == "" {
		return "", false
	}
	return text, true
}

func isSetextUnderline(line string) bool {
	if line == "" {
		return false
	}
	return strings.Trim(line, "=") == "" || (len(line) >= 2 && strings.Trim(line, "-") == "")
}

// fenceMarker returns the opening run of a fenced code block line
func fenceMarker(line string) string {
	for _, ch := range []string{"`", "~"} {
		if strings.HasPrefix(line, ch+ch+ch) {
			n := 0
			for n < len(line) && line[n] == ch[0] {
				n++
			}
			return line[:n]
		}
	}
	return ""
}
