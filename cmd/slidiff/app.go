package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fredcamaral/slidiff/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidiff/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
	"github.com/fredcamaral/slidiff/internal/domain/services"
)

// app holds the configuration and services shared by every command
type app struct {
	config   *entities.Config
	logger   *slog.Logger
	comparer *services.ComparisonService
}

// collectFlags returns the flags the user set explicitly, keyed by name, so
// config file values survive for everything left at its default
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	cmd.Flags().Visit(func(f *pflag.Flag) {
		var (
			value interface{}
			err   error
		)

		switch f.Value.Type() {
		case "bool":
			value, err = cmd.Flags().GetBool(f.Name)
		case "int":
			value, err = cmd.Flags().GetInt(f.Name)
		default:
			value = f.Value.String()
		}

		if err == nil {
			flags[f.Name] = value
		}
	})

	return flags
}

// newApp loads the layered configuration and wires the comparison pipeline
func newApp(cmd *cobra.Command) (*app, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	bootstrap := newLogger(entities.LoggingConfig{Level: string(entities.LogLevelWarn)}, cmd.ErrOrStderr())
	configService := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger(), bootstrap)

	cfg, err := configService.LoadConfig(cmd.Context(), workDir, collectFlags(cmd))
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	return &app{
		config:   cfg,
		logger:   logger,
		comparer: newComparisonService(cfg, logger),
	}, nil
}

// newLogger builds the root logger from the logging configuration
func newLogger(cfg entities.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSONFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newPresentationParser(cfg entities.ParserConfig) ports.PresentationParser {
	return parser.NewPresentationParserAdapter(parser.NewGoldmarkParser(cfg), cfg)
}

func newComparisonService(cfg *entities.Config, logger *slog.Logger) *services.ComparisonService {
	diff := services.NewDiffService(services.WithWorkers(cfg.Diff.Workers))
	return services.NewComparisonService(newPresentationParser(cfg.Parser), diff, logger)
}

// reportOptions derives report options from the output configuration
func reportOptions(cfg entities.OutputConfig, beforePath, afterPath string) ports.ReportOptions {
	return ports.ReportOptions{
		Title:         reportTitle(beforePath, afterPath),
		ShowUnchanged: cfg.ShowUnchanged,
		Color:         cfg.Color,
		ImageBaseURL:  cfg.ImageBaseURL,
	}
}

// reportTitle names the compared files, collapsing identical base names
func reportTitle(beforePath, afterPath string) string {
	before, after := filepath.Base(beforePath), filepath.Base(afterPath)
	if before == after {
		return before
	}
	return before + " -> " + after
}
