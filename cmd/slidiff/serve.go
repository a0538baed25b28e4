package main

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/slidiff/internal/adapters/primary/http"
	"github.com/fredcamaral/slidiff/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slidiff/internal/adapters/secondary/report"
	"github.com/fredcamaral/slidiff/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidiff/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <before.md> <after.md>",
		Short: "Serve a live HTML diff report",
		Long: `Start a local HTTP server with an HTML report of the differences between
two presentations. Both files are watched and every open report reloads
itself when the diff changes.

The server also exposes the diff as JSON under /api and accepts ad-hoc
comparisons with POST /api/diff.`,
		Example: `  slidiff serve talk-v1.md talk-v2.md
  slidiff serve old.md new.md --port 8080 --open`,
		Args: cobra.ExactArgs(2),
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().Bool("open", false, "Open the report in a browser (overrides config)")
	cmd.Flags().String("watch-mode", "", "File watcher: poll or notify (overrides config)")
	cmd.Flags().BoolP("show-unchanged", "u", false, "Include unchanged slides in the report")
	cmd.Flags().String("image-base-url", "", "Base URL for relative images in the report")
	cmd.Flags().String("boundary", "", "Slide boundary: heading or rule (overrides config)")
	cmd.Flags().Int("split-level", 0, "Deepest heading level that starts a slide (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	beforePath, afterPath := args[0], args[1]
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	server := httpserver.NewServer(a.comparer, report.NewService(), &a.config.Server, a.logger)
	server.SetVersion(Version)
	server.SetReportOptions(reportOptions(a.config.Output, beforePath, afterPath))

	fileWatcher, err := watcher.New(a.config.Watcher, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = fileWatcher.Stop() }()

	live := services.NewLiveDiffService(fileWatcher, a.comparer, server, a.logger)
	if err := live.Start(ctx, beforePath, afterPath); err != nil {
		return err
	}
	defer func() { _ = live.Stop() }()

	// The first diff is stored before any client can connect
	if err := live.Refresh(ctx); err != nil {
		return err
	}

	if err := server.Start(ctx, a.config.Server.Port, a.config.Server.Host); err != nil {
		return err
	}

	url := browseURL(server.Addr())
	fmt.Fprintf(cmd.OutOrStdout(), "Serving diff of %s at %s\n", reportTitle(beforePath, afterPath), url)

	if a.config.Browser.AutoOpen {
		if err := browser.NewLauncher(a.logger).Launch(url, false); err != nil {
			a.logger.Warn("Failed to open browser", "error", err)
		}
	}

	<-ctx.Done()
	a.logger.Info("Shutting down server")

	// ctx is already cancelled, the shutdown gets its own deadline
	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}

// browseURL turns a listen address into a URL a browser can open
func browseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}

	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
