package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidiff/internal/adapters/secondary/report"
	"github.com/fredcamaral/slidiff/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
	"github.com/fredcamaral/slidiff/internal/domain/services"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <before.md> <after.md>",
		Short: "Compare two versions of a presentation",
		Long: `Compare two markdown presentations slide by slide and print a report.

Slides with the same title are paired first, remaining slides are paired by
position. Every slide is reported as added, removed, modified, moved or
unchanged, with a line diff for modified slides.`,
		Example: `  slidiff diff talk-v1.md talk-v2.md
  slidiff diff old.md new.md --format markdown > review.md
  slidiff diff old.md new.md --exit-code --no-color
  slidiff diff draft.md final.md --watch`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}

	cmd.Flags().StringP("format", "f", "", "Report format: text, markdown, json, yaml or html (overrides config)")
	cmd.Flags().Bool("exit-code", false, "Exit with status 1 when the presentations differ")
	cmd.Flags().BoolP("watch", "w", false, "Recompute the diff whenever either file changes")
	cmd.Flags().String("watch-mode", "", "File watcher: poll or notify (overrides config)")
	cmd.Flags().BoolP("show-unchanged", "u", false, "Include unchanged slides in the report")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("boundary", "", "Slide boundary: heading or rule (overrides config)")
	cmd.Flags().Int("split-level", 0, "Deepest heading level that starts a slide (overrides config)")
	cmd.Flags().Int("workers", 0, "Goroutines used to classify slides (overrides config)")
	cmd.Flags().String("image-base-url", "", "Base URL for relative images in HTML reports")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	beforePath, afterPath := args[0], args[1]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	reports := report.NewService()
	format := a.config.Output.Format
	opts := reportOptions(a.config.Output, beforePath, afterPath)
	out := cmd.OutOrStdout()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		printer := newReportPrinter(reports, format, opts, out)
		return watchDiff(cmd.Context(), a, printer, beforePath, afterPath)
	}

	diff, err := a.comparer.CompareFiles(cmd.Context(), beforePath, afterPath)
	if err != nil {
		return err
	}

	if err := reports.Render(cmd.Context(), out, format, diff, opts); err != nil {
		return err
	}

	if exitCode, _ := cmd.Flags().GetBool("exit-code"); exitCode && diff.HasChanges() {
		return errChanges
	}
	return nil
}

// watchDiff publishes the current diff, then a new one after every change,
// until ctx is cancelled
func watchDiff(ctx context.Context, a *app, publisher ports.DiffPublisher, beforePath, afterPath string) error {
	fileWatcher, err := watcher.New(a.config.Watcher, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = fileWatcher.Stop() }()

	live := services.NewLiveDiffService(fileWatcher, a.comparer, publisher, a.logger)
	if err := live.Start(ctx, beforePath, afterPath); err != nil {
		return err
	}
	defer func() { _ = live.Stop() }()

	if err := live.Refresh(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// reportPrinter renders every published diff to a writer
type reportPrinter struct {
	reports ports.ReportService
	format  string
	opts    ports.ReportOptions
	out     io.Writer
	now     func() time.Time

	mu sync.Mutex
}

func newReportPrinter(reports ports.ReportService, format string, opts ports.ReportOptions, out io.Writer) *reportPrinter {
	return &reportPrinter{
		reports: reports,
		format:  format,
		opts:    opts,
		out:     out,
		now:     time.Now,
	}
}

// PublishDiff implements ports.DiffPublisher
func (p *reportPrinter) PublishDiff(ctx context.Context, diff *entities.PresentationDiff) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == entities.FormatText || p.format == entities.FormatMarkdown {
		if _, err := fmt.Fprintf(p.out, "\n=== %s ===\n", p.now().Format("15:04:05")); err != nil {
			return err
		}
	}

	return p.reports.Render(ctx, p.out, p.format, diff, p.opts)
}

var _ ports.DiffPublisher = (*reportPrinter)(nil)
