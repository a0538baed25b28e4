package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

func mergerWithEnv(env map[string]string) *ConfigMerger {
	return &ConfigMerger{getenv: func(key string) string { return env[key] }}
}

func TestGetDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, entities.BoundaryHeading, config.Parser.Boundary)
	assert.Equal(t, 2, config.Parser.SplitLevel)
	assert.Equal(t, entities.DefaultSlideTitle, config.Parser.DefaultTitle)
	assert.Equal(t, entities.FormatText, config.Output.Format)
	assert.True(t, config.Output.Color)
	assert.False(t, config.Browser.AutoOpen)
	assert.Equal(t, entities.WatchModePoll, config.Watcher.Mode)
}

func TestConfigMerger_Defaults(t *testing.T) {
	m := NewConfigMerger()

	first := m.Defaults()
	first.Server.CORSOrigins[0] = "changed"

	assert.NotEqual(t, "changed", m.Defaults().Server.CORSOrigins[0])
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	m := NewConfigMerger()
	base := GetDefaultConfig()

	t.Run("applies set flags", func(t *testing.T) {
		result := m.ApplyFlags(base, map[string]interface{}{
			FlagBoundary:      entities.BoundaryRule,
			FlagSplitLevel:    3,
			FlagWorkers:       4,
			FlagFormat:        entities.FormatJSON,
			FlagNoColor:       true,
			FlagShowUnchanged: true,
			FlagImageBaseURL:  "https://cdn.example.com/",
			FlagHost:          "0.0.0.0",
			FlagPort:          9999,
			FlagOpen:          true,
			FlagWatchMode:     entities.WatchModeNotify,
			FlagLogJSON:       true,
		})

		assert.Equal(t, entities.BoundaryRule, result.Parser.Boundary)
		assert.Equal(t, 3, result.Parser.SplitLevel)
		assert.Equal(t, 4, result.Diff.Workers)
		assert.Equal(t, entities.FormatJSON, result.Output.Format)
		assert.False(t, result.Output.Color)
		assert.True(t, result.Output.ShowUnchanged)
		assert.Equal(t, "https://cdn.example.com/", result.Output.ImageBaseURL)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 9999, result.Server.Port)
		assert.True(t, result.Browser.AutoOpen)
		assert.Equal(t, entities.WatchModeNotify, result.Watcher.Mode)
		assert.True(t, result.Logging.JSONFormat)

		// Base is untouched
		assert.Equal(t, GetDefaultConfig(), base)
	})

	t.Run("ignores empty and mistyped values", func(t *testing.T) {
		result := m.ApplyFlags(base, map[string]interface{}{
			FlagFormat:     "",
			FlagPort:       "8080",
			FlagSplitLevel: 0,
		})

		assert.Equal(t, base, result)
	})

	t.Run("verbose switches to debug unless a level is given", func(t *testing.T) {
		result := m.ApplyFlags(base, map[string]interface{}{FlagVerbose: true})
		assert.True(t, result.Logging.Verbose)
		assert.Equal(t, "debug", result.Logging.Level)

		result = m.ApplyFlags(base, map[string]interface{}{FlagVerbose: true, FlagLogLevel: "warn"})
		assert.Equal(t, "warn", result.Logging.Level)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	base := GetDefaultConfig()

	t.Run("applies environment", func(t *testing.T) {
		m := mergerWithEnv(map[string]string{
			"SLIDIFF_BOUNDARY":        "rule",
			"SLIDIFF_SPLIT_LEVEL":     "1",
			"SLIDIFF_DEFAULT_TITLE":   "Slide",
			"SLIDIFF_WORKERS":         "8",
			"SLIDIFF_FORMAT":          "yaml",
			"SLIDIFF_SHOW_UNCHANGED":  "true",
			"SLIDIFF_HOST":            "example.com",
			"SLIDIFF_PORT":            "9000",
			"SLIDIFF_CORS_ORIGINS":    "https://a.dev, ,https://b.dev",
			"SLIDIFF_TRUSTED_PROXIES": "10.0.0.0/8,127.0.0.1",
			"SLIDIFF_NO_BROWSER":      "false",
			"SLIDIFF_WATCH_MODE":      "notify",
			"SLIDIFF_WATCH_INTERVAL":  "500",
			"SLIDIFF_WATCH_DEBOUNCE":  "0",
			"SLIDIFF_LOG_LEVEL":       "error",
			"SLIDIFF_LOG_JSON":        "1",
		})

		result := m.ApplyEnvVars(base)

		assert.Equal(t, entities.BoundaryRule, result.Parser.Boundary)
		assert.Equal(t, 1, result.Parser.SplitLevel)
		assert.Equal(t, "Slide", result.Parser.DefaultTitle)
		assert.Equal(t, 8, result.Diff.Workers)
		assert.Equal(t, entities.FormatYAML, result.Output.Format)
		assert.True(t, result.Output.ShowUnchanged)
		assert.Equal(t, "example.com", result.Server.Host)
		assert.Equal(t, 9000, result.Server.Port)
		assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, result.Server.CORSOrigins)
		assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, result.Server.TrustedProxies)
		assert.True(t, result.Browser.AutoOpen)
		assert.Equal(t, entities.WatchModeNotify, result.Watcher.Mode)
		assert.Equal(t, 500, result.Watcher.IntervalMs)
		assert.Equal(t, 0, result.Watcher.DebounceMs)
		assert.Equal(t, "error", result.Logging.Level)
		assert.True(t, result.Logging.JSONFormat)
	})

	t.Run("NO_COLOR wins over SLIDIFF_COLOR", func(t *testing.T) {
		m := mergerWithEnv(map[string]string{"SLIDIFF_COLOR": "true", "NO_COLOR": "1"})
		assert.False(t, m.ApplyEnvVars(base).Output.Color)
	})

	t.Run("malformed numbers are ignored", func(t *testing.T) {
		m := mergerWithEnv(map[string]string{"SLIDIFF_PORT": "http", "SLIDIFF_WORKERS": "-2"})
		result := m.ApplyEnvVars(base)

		assert.Equal(t, base.Server.Port, result.Server.Port)
		assert.Equal(t, base.Diff.Workers, result.Diff.Workers)
	})

	t.Run("empty environment is a copy", func(t *testing.T) {
		result := mergerWithEnv(nil).ApplyEnvVars(base)
		assert.Equal(t, base, result)
		assert.NotSame(t, base, result)
	})
}
