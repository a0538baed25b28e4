package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

func render(t *testing.T, renderer ports.ReportRenderer, diff *entities.PresentationDiff, opts ports.ReportOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, renderer.Render(context.Background(), &buf, diff, opts))
	return buf.String()
}

func TestTextRenderer(t *testing.T) {
	t.Run("plain report", func(t *testing.T) {
		out := render(t, NewTextRenderer(), fixtureDiff(), ports.ReportOptions{})

		want := strings.Join([]string{
			"Slide diff",
			"3 slides -> 3 slides: 1 added, 1 removed, 1 modified",
			"",
			"~ modified  #2 -> #2 Agenda",
			"     ## Agenda",
			"    -- one",
			"    +- two",
			"- removed   #3 Old",
			"+ added     #3 New",
			"",
		}, "\n")
		assert.Equal(t, want, out)
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("show unchanged", func(t *testing.T) {
		out := render(t, NewTextRenderer(), fixtureDiff(), ports.ReportOptions{ShowUnchanged: true})
		assert.Contains(t, out, "= unchanged #1 -> #1 Intro")
	})

	t.Run("no changes", func(t *testing.T) {
		diff := &entities.PresentationDiff{Summary: entities.DiffSummary{TotalSlidesBefore: 2, TotalSlidesAfter: 2, Unchanged: 2}}
		out := render(t, NewTextRenderer(), diff, ports.ReportOptions{Title: "deck.md"})
		assert.Equal(t, "deck.md\n2 slides -> 2 slides: No changes\n", out)
	})

	t.Run("renamed slide and tabs", func(t *testing.T) {
		diff := &entities.PresentationDiff{
			SlideDiffs: []entities.SlideDiff{{
				Status:       entities.StatusModified,
				BeforeSlide:  &entities.Slide{Title: "Before"},
				AfterSlide:   &entities.Slide{Title: "After"},
				BeforeIndex:  intPtr(0),
				AfterIndex:   intPtr(0),
				TitleChanged: true,
				ContentChanges: []entities.TextDiffEntry{
					{Type: entities.LineAdd, Value: "\tindented", LineNumber: 1},
				},
			}},
			Summary: entities.DiffSummary{Modified: 1},
		}

		out := render(t, NewTextRenderer(), diff, ports.ReportOptions{Color: true})
		assert.Contains(t, out, "After")
		assert.Contains(t, out, "(was Before)")
		assert.Contains(t, out, "+\tindented")
	})
}

func TestMarkdownRenderer(t *testing.T) {
	out := render(t, NewMarkdownRenderer(), fixtureDiff(), ports.ReportOptions{Title: "Deck review"})

	assert.True(t, strings.HasPrefix(out, "# Deck review\n\n**Summary:** 1 added, 1 removed, 1 modified (3 slides -> 3 slides)\n"))
	assert.Contains(t, out, "| modified | 1 |\n")
	assert.Contains(t, out, "| moved | 0 |\n")
	assert.Contains(t, out, "## Modified: Agenda (#2 -> #2)\n\n```diff\n ## Agenda\n-- one\n+- two\n```\n")
	assert.Contains(t, out, "## Removed: Old (#3)\n")
	assert.Contains(t, out, "## Added: New (#3)\n")
	assert.NotContains(t, out, "Intro")
}

func TestMarkdownHelpers(t *testing.T) {
	assert.Equal(t, "```", fenceFor("plain"))
	assert.Equal(t, "```", fenceFor("inline `code` only"))
	assert.Equal(t, "````", fenceFor("```go\nx\n```"))
	assert.Equal(t, "``````", fenceFor("`````"))

	assert.Equal(t, `a\*b\_c \[x\](y) \|`, escapeInline("a*b_c [x](y) |"))
	assert.Equal(t, "Moved", statusLabel(entities.StatusMoved))
	assert.Equal(t, "", statusLabel(""))
}

func TestStructuredRenderers(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out := render(t, NewJSONRenderer(), fixtureDiff(), ports.ReportOptions{})

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, NewDocument(fixtureDiff(), ports.ReportOptions{}), doc)
		assert.Contains(t, out, `"hasChanges": true`)
		assert.Contains(t, out, `"beforeIndex": 1`)
	})

	t.Run("yaml", func(t *testing.T) {
		out := render(t, NewYAMLRenderer(), fixtureDiff(), ports.ReportOptions{})

		var doc Document
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, NewDocument(fixtureDiff(), ports.ReportOptions{}), doc)
		assert.Contains(t, out, "hasChanges: true\n")
		assert.Contains(t, out, "text: 1 added, 1 removed, 1 modified\n")
	})
}

func TestHTMLRenderer(t *testing.T) {
	t.Run("renders and sanitizes slides", func(t *testing.T) {
		out := render(t, NewHTMLRenderer(), fixtureDiff(), ports.ReportOptions{ImageBaseURL: "https://cdn.example.com/deck"})

		assert.Contains(t, out, "<title>Slide diff</title>")
		assert.Contains(t, out, "3 slides &rarr; 3 slides: 1 added, 1 removed, 1 modified")
		assert.Contains(t, out, `<section class="slide slide-modified">`)
		assert.Contains(t, out, `<span class="remove">- one</span>`)
		assert.Contains(t, out, `<span class="add">- two</span>`)
		assert.Contains(t, out, `src="https://cdn.example.com/deck/img/chart.png"`)
		assert.Contains(t, out, `<h2 id="new">New</h2>`)
		assert.NotContains(t, out, "<script>alert")
		assert.NotContains(t, out, "new WebSocket")
		assert.NotContains(t, out, "Intro")
	})

	t.Run("live reload script", func(t *testing.T) {
		out := render(t, NewHTMLRenderer(), fixtureDiff(), ports.ReportOptions{LiveReload: true})
		assert.Contains(t, out, "new WebSocket")
		assert.Contains(t, out, "diff_updated")
	})

	t.Run("empty diff", func(t *testing.T) {
		out := render(t, NewHTMLRenderer(), &entities.PresentationDiff{}, ports.ReportOptions{})
		assert.Contains(t, out, "No slide changes.")
	})

	t.Run("invalid image base url", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewHTMLRenderer().Render(context.Background(), &buf, fixtureDiff(), ports.ReportOptions{ImageBaseURL: "relative/path"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating markdown renderer")
	})
}
