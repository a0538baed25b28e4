package config

import (
	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// Default values shared by the loader, the merger and `slidiff config init`
const (
	DefaultHost       = "localhost"
	DefaultPort       = 4280
	DefaultSplitLevel = 2
	DefaultIntervalMs = 200
	DefaultDebounceMs = 300
)

// GetDefaultConfig returns the default configuration. Environment overrides
// are applied separately by ConfigMerger.ApplyEnvVars.
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Parser: entities.ParserConfig{
			Boundary:     entities.BoundaryHeading,
			SplitLevel:   DefaultSplitLevel,
			DefaultTitle: entities.DefaultSlideTitle,
		},
		Diff: entities.DiffConfig{
			Workers: 1,
		},
		Output: entities.OutputConfig{
			Format:        entities.FormatText,
			Color:         true,
			ShowUnchanged: false,
		},
		Server: entities.ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			Environment:     "development",
			CORSOrigins: []string{
				"http://localhost:4280",
				"http://127.0.0.1:4280",
			},
		},
		Browser: entities.BrowserConfig{
			AutoOpen: false,
		},
		Watcher: entities.WatcherConfig{
			Mode:       entities.WatchModePoll,
			IntervalMs: DefaultIntervalMs,
			DebounceMs: DefaultDebounceMs,
		},
		Logging: entities.LoggingConfig{
			Level:      string(entities.LogLevelInfo),
			Verbose:    false,
			JSONFormat: false,
		},
	}
}
