package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// MarkdownRenderer renders the report as a markdown document
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a new markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Format implements ports.ReportRenderer
func (r *MarkdownRenderer) Format() string {
	return entities.FormatMarkdown
}

// Render writes the markdown report
func (r *MarkdownRenderer) Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var content strings.Builder

	content.WriteString(fmt.Sprintf("# %s\n\n", reportTitle(opts)))
	content.WriteString(fmt.Sprintf("**Summary:** %s (%d slides -> %d slides)\n\n",
		diff.ChangeSummary(), diff.Summary.TotalSlidesBefore, diff.Summary.TotalSlidesAfter))

	content.WriteString("| Status | Slides |\n")
	content.WriteString("| --- | ---: |\n")
	for _, status := range entities.AllStatuses {
		content.WriteString(fmt.Sprintf("| %s | %d |\n", status, diff.Summary.Count(status)))
	}

	for _, sd := range visibleDiffs(diff, opts) {
		content.WriteString(fmt.Sprintf("\n## %s: %s (%s)\n", statusLabel(sd.Status), escapeInline(sd.Title()), positions(sd)))

		if sd.TitleChanged && sd.BeforeSlide != nil {
			content.WriteString(fmt.Sprintf("\nRenamed from *%s*.\n", escapeInline(sd.BeforeSlide.Title)))
		}

		if len(sd.ContentChanges) > 0 {
			body := strings.Join(diffLines(sd.ContentChanges), "\n")
			fence := fenceFor(body)
			content.WriteString(fmt.Sprintf("\n%sdiff\n%s\n%s\n", fence, body, fence))
		}
	}

	_, err := io.WriteString(w, content.String())
	return err
}

// statusLabel capitalizes a status for headings
func statusLabel(status entities.DiffStatus) string {
	s := string(status)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fenceFor returns a backtick fence longer than any backtick run in body
func fenceFor(body string) string {
	longest, run := 0, 0
	for _, r := range body {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}

	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`|`, `\|`,
)

// escapeInline escapes characters that would change inline markdown meaning
func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}
