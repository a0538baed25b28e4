package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/fredcamaral/slidiff/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// HTMLRenderer renders a standalone HTML report with the slides rendered
type HTMLRenderer struct {
	template  *template.Template
	sanitizer *bluemonday.Policy
}

// NewHTMLRenderer creates a new HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		template:  template.Must(template.New("report").Parse(htmlReportTemplate)),
		sanitizer: createHTMLSanitizer(),
	}
}

// Format implements ports.ReportRenderer
func (r *HTMLRenderer) Format() string {
	return entities.FormatHTML
}

type htmlLine struct {
	Class string
	Text  string
}

type htmlSlide struct {
	Status      string
	Title       string
	Positions   string
	RenamedFrom string
	BeforeHTML  template.HTML
	AfterHTML   template.HTML
	Lines       []htmlLine
}

type htmlCount struct {
	Status string
	Count  int
}

type htmlReport struct {
	Title      string
	Summary    string
	Before     int
	After      int
	Counts     []htmlCount
	Slides     []htmlSlide
	LiveReload bool
}

// Render writes the HTML report
func (r *HTMLRenderer) Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	md, err := parser.NewHTMLMarkdown(opts.ImageBaseURL)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}

	data := htmlReport{
		Title:      reportTitle(opts),
		Summary:    diff.ChangeSummary(),
		Before:     diff.Summary.TotalSlidesBefore,
		After:      diff.Summary.TotalSlidesAfter,
		LiveReload: opts.LiveReload,
	}
	for _, status := range entities.AllStatuses {
		data.Counts = append(data.Counts, htmlCount{Status: string(status), Count: diff.Summary.Count(status)})
	}

	for _, sd := range visibleDiffs(diff, opts) {
		slide := htmlSlide{
			Status:    string(sd.Status),
			Title:     sd.Title(),
			Positions: positions(sd),
		}
		if sd.TitleChanged && sd.BeforeSlide != nil {
			slide.RenamedFrom = sd.BeforeSlide.Title
		}

		// Only the side that carries information is rendered
		if sd.BeforeSlide != nil && (sd.Status == entities.StatusRemoved || sd.Status == entities.StatusModified) {
			if slide.BeforeHTML, err = r.renderSlide(md, sd.BeforeSlide); err != nil {
				return err
			}
		}
		if sd.AfterSlide != nil && sd.Status != entities.StatusRemoved {
			if slide.AfterHTML, err = r.renderSlide(md, sd.AfterSlide); err != nil {
				return err
			}
		}

		for _, line := range sd.ContentChanges {
			slide.Lines = append(slide.Lines, htmlLine{Class: string(line.Type), Text: line.Value})
		}

		data.Slides = append(data.Slides, slide)
	}

	if err := r.template.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// renderSlide converts slide markdown to sanitized HTML
func (r *HTMLRenderer) renderSlide(md goldmark.Markdown, slide *entities.Slide) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(slide.Content), &buf); err != nil {
		return "", fmt.Errorf("rendering slide %s: %w", slide.ID, err)
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil // #nosec G203 - sanitized above
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide content
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("a", "img", "input")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("align").OnElements("th", "td")
	p.AllowAttrs("class").OnElements("code", "div", "span")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("checked", "disabled", "type").OnElements("input")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)

	return p
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; padding: 0 1rem; color: #1f2328; }
.summary { color: #59636e; }
.counts span { display: inline-block; margin-right: 1rem; }
.slide { border: 1px solid #d1d9e0; border-radius: 6px; margin: 1.5rem 0; padding: 1rem; }
.slide h2 { margin-top: 0; font-size: 1.1rem; }
.status { text-transform: uppercase; font-size: .75rem; padding: .1rem .4rem; border-radius: 4px; color: #fff; }
.status-added { background: #1a7f37; } .status-removed { background: #cf222e; }
.status-modified { background: #9a6700; } .status-moved { background: #0969da; }
.status-unchanged { background: #6e7781; }
.sides { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
.side { background: #f6f8fa; padding: .5rem 1rem; border-radius: 6px; overflow: auto; }
pre.lines { font-size: .85rem; margin: 1rem 0 0; }
.add { background: #dafbe1; } .add::before { content: "+ "; }
.remove { background: #ffebe9; } .remove::before { content: "- "; }
.unchanged::before { content: "  "; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="summary">{{.Before}} slides &rarr; {{.After}} slides: {{.Summary}}</p>
<p class="counts">{{range .Counts}}<span class="status-count">{{.Status}}: {{.Count}}</span>{{end}}</p>
{{range .Slides}}<section class="slide slide-{{.Status}}">
<h2><span class="status status-{{.Status}}">{{.Status}}</span> {{.Title}} <small>{{.Positions}}</small>{{if .RenamedFrom}} <small>(was {{.RenamedFrom}})</small>{{end}}</h2>
<div class="sides">{{if .BeforeHTML}}<div class="side side-before">{{.BeforeHTML}}</div>{{end}}{{if .AfterHTML}}<div class="side side-after">{{.AfterHTML}}</div>{{end}}</div>
{{if .Lines}}<pre class="lines">{{range .Lines}}<span class="{{.Class}}">{{.Text}}</span>
{{end}}</pre>{{end}}
</section>
{{else}}<p>No slide changes.</p>
{{end}}{{if .LiveReload}}<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (msg) {
    try {
      if (JSON.parse(msg.data).type === "diff_updated") { location.reload(); }
    } catch (e) {}
  };
})();
</script>{{end}}
</body>
</html>
`
