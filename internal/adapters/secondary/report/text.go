package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// TextRenderer renders a terminal report
type TextRenderer struct{}

// NewTextRenderer creates a new text renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Format implements ports.ReportRenderer
func (r *TextRenderer) Format() string {
	return entities.FormatText
}

type textStyles struct {
	header  lipgloss.Style
	dim     lipgloss.Style
	status  map[entities.DiffStatus]lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	// Diff lines keep their tabs verbatim
	plain := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if !color {
		return textStyles{
			header:  plain,
			dim:     plain,
			status:  map[entities.DiffStatus]lipgloss.Style{},
			added:   plain,
			removed: plain,
		}
	}

	green := plain.Foreground(lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"})
	red := plain.Foreground(lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"})
	grey := plain.Foreground(lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"})

	return textStyles{
		header: plain.Bold(true),
		dim:    grey,
		status: map[entities.DiffStatus]lipgloss.Style{
			entities.StatusAdded:     green.Bold(true),
			entities.StatusRemoved:   red.Bold(true),
			entities.StatusModified:  plain.Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}),
			entities.StatusMoved:     plain.Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}),
			entities.StatusUnchanged: grey,
		},
		added:   green,
		removed: red,
	}
}

var statusMarkers = map[entities.DiffStatus]string{
	entities.StatusAdded:     "+",
	entities.StatusRemoved:   "-",
	entities.StatusModified:  "~",
	entities.StatusMoved:     ">",
	entities.StatusUnchanged: "=",
}

// Render writes the terminal report
func (r *TextRenderer) Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	styles := newTextStyles(opts.Color)
	var b strings.Builder

	b.WriteString(styles.header.Render(reportTitle(opts)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d slides -> %d slides: %s\n",
		diff.Summary.TotalSlidesBefore, diff.Summary.TotalSlidesAfter, diff.ChangeSummary())

	visible := visibleDiffs(diff, opts)
	if len(visible) > 0 {
		b.WriteString("\n")
	}

	for _, sd := range visible {
		status := fmt.Sprintf("%s %-9s", statusMarkers[sd.Status], sd.Status)
		if style, ok := styles.status[sd.Status]; ok {
			status = style.Render(status)
		}

		fmt.Fprintf(&b, "%s %s %s", status, styles.dim.Render(positions(sd)), sd.Title())
		if sd.TitleChanged && sd.BeforeSlide != nil {
			fmt.Fprintf(&b, " %s", styles.dim.Render("(was "+sd.BeforeSlide.Title+")"))
		}
		b.WriteString("\n")

		for _, line := range diffLines(sd.ContentChanges) {
			switch line[0] {
			case '+':
				line = styles.added.Render(line)
			case '-':
				line = styles.removed.Render(line)
			}
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
