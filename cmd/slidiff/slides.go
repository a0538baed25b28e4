package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// SlideListing is one row of `slidiff slides`
type SlideListing struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Chunks    []string `json:"chunks"`
}

func newSlidesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slides <file.md>",
		Short: "List the slides of a presentation",
		Long: `List the slides slidiff finds in a presentation, with the title used for
matching, the source line range and the kinds of content blocks.

Use it to check how a deck is split before comparing two versions.`,
		Example: `  slidiff slides talk.md
  slidiff slides talk.md --filter arch
  slidiff slides talk.md --boundary rule --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runSlides,
	}

	cmd.Flags().String("filter", "", "Only list slides whose title fuzzy-matches the query")
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")
	cmd.Flags().String("boundary", "", "Slide boundary: heading or rule (overrides config)")
	cmd.Flags().Int("split-level", 0, "Deepest heading level that starts a slide (overrides config)")

	return cmd
}

func runSlides(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != entities.FormatText && format != entities.FormatJSON {
		return fmt.Errorf("unsupported format %q for slides (use text or json)", format)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	presentation, err := a.comparer.LoadPresentation(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("filter")
	listings := listSlides(presentation, query)

	if format == entities.FormatJSON {
		return printSlidesJSON(cmd.OutOrStdout(), listings)
	}
	return printSlidesTable(cmd.OutOrStdout(), listings)
}

// listSlides describes the slides whose title matches query; an empty query keeps all
func listSlides(presentation *entities.Presentation, query string) []SlideListing {
	listings := make([]SlideListing, 0, len(presentation.Slides))

	for _, slide := range presentation.Slides {
		if query != "" && !fuzzy.MatchFold(query, slide.Title) {
			continue
		}

		kinds := make([]string, 0, len(slide.Chunks))
		for _, chunk := range slide.Chunks {
			kinds = append(kinds, string(chunk.Kind))
		}

		listings = append(listings, SlideListing{
			Index:     slide.Index,
			ID:        slide.ID,
			Title:     slide.Title,
			StartLine: slide.StartLine,
			EndLine:   slide.EndLine,
			Chunks:    kinds,
		})
	}

	return listings
}

func printSlidesTable(w io.Writer, listings []SlideListing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(w, "No slides found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTITLE\tLINES\tCHUNKS")
	for _, l := range listings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d-%d\t%s\n",
			l.Index+1, l.ID, l.Title, l.StartLine, l.EndLine, strings.Join(l.Chunks, ","))
	}
	return tw.Flush()
}

func printSlidesJSON(w io.Writer, listings []SlideListing) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(listings)
}
