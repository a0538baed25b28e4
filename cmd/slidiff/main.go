package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"

	// BuildDate is set during build
	BuildDate = "unknown"
)

// errChanges is returned by `diff --exit-code` when the presentations differ
var errChanges = errors.New("presentations differ")

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slidiff",
		Short: "Compare markdown slide decks slide by slide",
		Long: `slidiff compares two versions of a markdown presentation. Slides are
matched by title first and by position second, then reported as added,
removed, modified, moved or unchanged with a line diff of each change.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().StringP("config", "c", "", "Config file (default: global config, then ./slidiff.toml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().Bool("log-json", false, "Write logs as JSON (overrides config)")

	root.AddCommand(newDiffCmd(), newSlidesCmd(), newServeCmd(), newConfigCmd())
	return root
}

func main() {
	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// --exit-code reports differences through the status alone
		if !errors.Is(err, errChanges) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}
