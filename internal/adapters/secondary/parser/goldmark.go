package parser

import (
	"bytes"
	"context"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// GoldmarkParser implements the MarkdownParser interface using Goldmark.
// It splits a document into raw slides and records their source lines.
type GoldmarkParser struct {
	md         goldmark.Markdown
	boundary   string
	splitLevel int
}

// NewGoldmarkParser creates a new Goldmark-based markdown parser
func NewGoldmarkParser(cfg entities.ParserConfig) *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // GitHub Flavored Markdown
		),
	)

	boundary := cfg.Boundary
	if boundary == "" {
		boundary = entities.BoundaryHeading
	}
	splitLevel := cfg.SplitLevel
	if splitLevel <= 0 {
		splitLevel = 2
	}

	return &GoldmarkParser{
		md:         md,
		boundary:   boundary,
		splitLevel: splitLevel,
	}
}

// lineRange is a half-open range of 0-based line indices
type lineRange struct {
	start, end int
}

// Parse parses markdown content into frontmatter and raw slides
func (p *GoldmarkParser) Parse(ctx context.Context, content []byte) (*ports.ParsedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := []byte(entities.NormalizeLineEndings(string(content)))

	// Extract frontmatter; line numbers stay relative to the whole document
	meta, body, lineOffset := extractFrontmatter(source)

	lines := strings.Split(string(body), "\n")

	var ranges []lineRange
	if p.boundary == entities.BoundaryRule {
		ranges = splitOnRules(lines)
	} else {
		ranges = p.splitOnHeadings(body, len(lines))
	}

	slides := make([]ports.RawSlide, 0, len(ranges))
	for _, r := range ranges {
		start, end := trimBlankLines(lines, r.start, r.end)
		if p.boundary != entities.BoundaryRule {
			start, end = trimTrailingRules(lines, start, end)
		}
		if start >= end {
			continue
		}

		slideLines := lines[start:end]
		slides = append(slides, ports.RawSlide{
			Content:   strings.Join(slideLines, "\n"),
			Notes:     collectNotes(slideLines),
			Index:     len(slides),
			StartLine: lineOffset + start + 1,
			EndLine:   lineOffset + end,
		})
	}

	return &ports.ParsedContent{
		Frontmatter: meta,
		Slides:      slides,
	}, nil
}

// splitOnHeadings starts a slide at every top-level heading whose level is at
// most splitLevel. Headings nested in lists, quotes or code never split.
func (p *GoldmarkParser) splitOnHeadings(body []byte, lineCount int) []lineRange {
	doc := p.md.Parser().Parse(text.NewReader(body))

	var starts []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > p.splitLevel || heading.Lines().Len() == 0 {
			continue
		}
		offset := heading.Lines().At(0).Start
		starts = append(starts, bytes.Count(body[:offset], []byte("\n")))
	}

	ranges := make([]lineRange, 0, len(starts)+1)
	prev := 0
	for _, start := range starts {
		if start > prev {
			// Text before the first heading becomes its own slide
			ranges = append(ranges, lineRange{start: prev, end: start})
		}
		prev = start
	}
	return append(ranges, lineRange{start: prev, end: lineCount})
}

// splitOnRules splits on thematic breaks outside fenced code blocks; the
// rule lines themselves belong to no slide
func splitOnRules(lines []string) []lineRange {
	var ranges []lineRange
	var fences fenceTracker
	start := 0

	for i, line := range lines {
		if fences.scan(line) || fences.inside() {
			continue
		}
		if isThematicBreak(line) {
			ranges = append(ranges, lineRange{start: start, end: i})
			start = i + 1
		}
	}
	return append(ranges, lineRange{start: start, end: len(lines)})
}

// trimBlankLines narrows [start, end) to exclude leading and trailing blank lines
func trimBlankLines(lines []string, start, end int) (int, int) {
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return start, end
}

// trimTrailingRules drops "---" separators left at the end of a heading
// delimited slide. A rule directly under paragraph text is a setext
// underline and stays.
func trimTrailingRules(lines []string, start, end int) (int, int) {
	for end > start && isThematicBreak(lines[end-1]) {
		if end-1 > start {
			prev := strings.TrimSpace(lines[end-2])
			if prev != "" && !strings.HasPrefix(prev, "#") {
				break
			}
		}
		start, end = trimBlankLines(lines, start, end-1)
	}
	return start, end
}

// collectNotes gathers "Note:" lines outside fenced blocks as speaker notes
func collectNotes(lines []string) string {
	var notes []string
	var fences fenceTracker

	for _, line := range lines {
		if fences.scan(line) || fences.inside() {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if note, ok := strings.CutPrefix(trimmed, "Note:"); ok {
			if note = strings.TrimSpace(note); note != "" {
				notes = append(notes, note)
			}
		}
	}
	return strings.Join(notes, "\n")
}

// extractFrontmatter splits YAML (---), TOML (+++) or JSON frontmatter from
// the document. It returns the body and how many lines the frontmatter used.
// Malformed or keyless frontmatter is left in the body: a deck that opens
// with a "---" rule must not lose its first slide.
func extractFrontmatter(source []byte) (map[string]interface{}, []byte, int) {
	var meta map[string]interface{}

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil || len(meta) == 0 || len(body) >= len(source) {
		return nil, source, 0
	}

	if !bytes.HasSuffix(source, body) {
		return meta, body, 0
	}
	consumed := source[:len(source)-len(body)]
	return meta, body, bytes.Count(consumed, []byte("\n"))
}

// Ensure GoldmarkParser implements ports.MarkdownParser
var _ ports.MarkdownParser = (*GoldmarkParser)(nil)
