package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// Flag keys understood by ApplyFlags
const (
	FlagBoundary      = "boundary"
	FlagSplitLevel    = "split-level"
	FlagDefaultTitle  = "default-title"
	FlagWorkers       = "workers"
	FlagFormat        = "format"
	FlagNoColor       = "no-color"
	FlagShowUnchanged = "show-unchanged"
	FlagImageBaseURL  = "image-base-url"
	FlagHost          = "host"
	FlagPort          = "port"
	FlagOpen          = "open"
	FlagWatchMode     = "watch-mode"
	FlagVerbose       = "verbose"
	FlagLogLevel      = "log-level"
	FlagLogJSON       = "log-json"
	FlagConfig        = "config"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct {
	getenv func(string) string
}

// NewConfigMerger creates a new configuration merger reading the process environment
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{getenv: os.Getenv}
}

// Defaults returns a fresh default configuration
func (m *ConfigMerger) Defaults() *entities.Config {
	return GetDefaultConfig()
}

// ApplyFlags applies CLI flag overrides to a configuration. Only flags the
// user actually set should be present in flags.
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	// Parser
	if boundary, ok := flags[FlagBoundary].(string); ok && boundary != "" {
		result.Parser.Boundary = boundary
	}
	if level, ok := flags[FlagSplitLevel].(int); ok && level > 0 {
		result.Parser.SplitLevel = level
	}
	if title, ok := flags[FlagDefaultTitle].(string); ok && title != "" {
		result.Parser.DefaultTitle = title
	}

	// Diff
	if workers, ok := flags[FlagWorkers].(int); ok && workers >= 0 {
		result.Diff.Workers = workers
	}

	// Output
	if format, ok := flags[FlagFormat].(string); ok && format != "" {
		result.Output.Format = format
	}
	if noColor, ok := flags[FlagNoColor].(bool); ok {
		result.Output.Color = !noColor
	}
	if showUnchanged, ok := flags[FlagShowUnchanged].(bool); ok {
		result.Output.ShowUnchanged = showUnchanged
	}
	if baseURL, ok := flags[FlagImageBaseURL].(string); ok && baseURL != "" {
		result.Output.ImageBaseURL = baseURL
	}

	// Server and browser
	if port, ok := flags[FlagPort].(int); ok && port > 0 {
		result.Server.Port = port
	}
	if host, ok := flags[FlagHost].(string); ok && host != "" {
		result.Server.Host = host
	}
	if open, ok := flags[FlagOpen].(bool); ok {
		result.Browser.AutoOpen = open
	}

	// Watcher
	if mode, ok := flags[FlagWatchMode].(string); ok && mode != "" {
		result.Watcher.Mode = mode
	}

	// Logging
	if verbose, ok := flags[FlagVerbose].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}
	if level, ok := flags[FlagLogLevel].(string); ok && level != "" {
		result.Logging.Level = level
	}
	if jsonFormat, ok := flags[FlagLogJSON].(bool); ok {
		result.Logging.JSONFormat = jsonFormat
	}

	return result
}

// ApplyEnvVars applies SLIDIFF_* environment variable overrides to a configuration.
// NO_COLOR disables colour regardless of its value.
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Parser configuration from environment
	if boundary := m.getenv("SLIDIFF_BOUNDARY"); boundary != "" {
		result.Parser.Boundary = boundary
	}
	if level, ok := m.envInt("SLIDIFF_SPLIT_LEVEL"); ok && level > 0 {
		result.Parser.SplitLevel = level
	}
	if title := m.getenv("SLIDIFF_DEFAULT_TITLE"); title != "" {
		result.Parser.DefaultTitle = title
	}

	// Diff configuration from environment
	if workers, ok := m.envInt("SLIDIFF_WORKERS"); ok && workers >= 0 {
		result.Diff.Workers = workers
	}

	// Output configuration from environment
	if format := m.getenv("SLIDIFF_FORMAT"); format != "" {
		result.Output.Format = format
	}
	if color, ok := m.envBool("SLIDIFF_COLOR"); ok {
		result.Output.Color = color
	}
	if m.getenv("NO_COLOR") != "" {
		result.Output.Color = false
	}
	if showUnchanged, ok := m.envBool("SLIDIFF_SHOW_UNCHANGED"); ok {
		result.Output.ShowUnchanged = showUnchanged
	}
	if baseURL := m.getenv("SLIDIFF_IMAGE_BASE_URL"); baseURL != "" {
		result.Output.ImageBaseURL = baseURL
	}

	// Server configuration from environment
	if host := m.getenv("SLIDIFF_HOST"); host != "" {
		result.Server.Host = host
	}
	if port, ok := m.envInt("SLIDIFF_PORT"); ok && port > 0 {
		result.Server.Port = port
	}
	if env := m.getenv("SLIDIFF_ENV"); env != "" {
		result.Server.Environment = env
	}
	if origins := m.getenv("SLIDIFF_CORS_ORIGINS"); origins != "" {
		result.Server.CORSOrigins = splitList(origins)
	}
	if proxies := m.getenv("SLIDIFF_TRUSTED_PROXIES"); proxies != "" {
		result.Server.TrustedProxies = splitList(proxies)
	}

	// Browser configuration from environment
	if noBrowser, ok := m.envBool("SLIDIFF_NO_BROWSER"); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	// Watcher configuration from environment
	if mode := m.getenv("SLIDIFF_WATCH_MODE"); mode != "" {
		result.Watcher.Mode = mode
	}
	if interval, ok := m.envInt("SLIDIFF_WATCH_INTERVAL"); ok && interval > 0 {
		result.Watcher.IntervalMs = interval
	}
	if debounce, ok := m.envInt("SLIDIFF_WATCH_DEBOUNCE"); ok && debounce >= 0 {
		result.Watcher.DebounceMs = debounce
	}

	// Logging configuration from environment
	if level := m.getenv("SLIDIFF_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}
	if jsonFormat, ok := m.envBool("SLIDIFF_LOG_JSON"); ok {
		result.Logging.JSONFormat = jsonFormat
	}

	return result
}

func (m *ConfigMerger) envInt(key string) (int, bool) {
	value := m.getenv(key)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	return n, err == nil
}

func (m *ConfigMerger) envBool(key string) (bool, bool) {
	value := m.getenv(key)
	if value == "" {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	return b, err == nil
}

// splitList splits a comma separated list, dropping blanks
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	// All sections are value types except the server lists
	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}
	if src.Server.TrustedProxies != nil {
		dst.Server.TrustedProxies = make([]string, len(src.Server.TrustedProxies))
		copy(dst.Server.TrustedProxies, src.Server.TrustedProxies)
	}

	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
