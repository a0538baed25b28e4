package entities

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Slide boundary policies
const (
	BoundaryHeading = "heading"
	BoundaryRule    = "rule"
)

// Watcher modes
const (
	WatchModePoll   = "poll"
	WatchModeNotify = "notify"
)

// Report formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
)

// ReportFormats lists every supported report format
var ReportFormats = []string{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatHTML}

// Config represents the complete application configuration
type Config struct {
	Parser  ParserConfig  `toml:"parser"`
	Diff    DiffConfig    `toml:"diff"`
	Output  OutputConfig  `toml:"output"`
	Server  ServerConfig  `toml:"server"`
	Browser BrowserConfig `toml:"browser"`
	Watcher WatcherConfig `toml:"watcher"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Parser.Validate(); err != nil {
		return fmt.Errorf("parser config: %w", err)
	}

	if err := c.Diff.Validate(); err != nil {
		return fmt.Errorf("diff config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ParserConfig controls how markdown is split into slides
type ParserConfig struct {
	Boundary     string `toml:"boundary"`      // heading or rule
	SplitLevel   int    `toml:"split_level"`   // deepest heading level that starts a slide
	DefaultTitle string `toml:"default_title"` // title of slides without a heading
}

// Validate validates parser configuration
func (p ParserConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Boundary, validation.Required, validation.In(BoundaryHeading, BoundaryRule)),
		validation.Field(&p.SplitLevel, validation.Required, validation.Min(1), validation.Max(6)),
	)
}

// GetDefaultTitle returns the fallback slide title with default
func (p ParserConfig) GetDefaultTitle() string {
	if strings.TrimSpace(p.DefaultTitle) == "" {
		return DefaultSlideTitle
	}
	return p.DefaultTitle
}

// DiffConfig controls the comparison engine
type DiffConfig struct {
	Workers int `toml:"workers"` // parallel slide classification; 0 or 1 is sequential
}

// Validate validates diff configuration
func (d DiffConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Workers, validation.Min(0), validation.Max(64)),
	)
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format        string `toml:"format"`
	Color         bool   `toml:"color"`
	ShowUnchanged bool   `toml:"show_unchanged"`
	ImageBaseURL  string `toml:"image_base_url"`
}

// Validate validates output configuration
func (o OutputConfig) Validate() error {
	formats := make([]interface{}, len(ReportFormats))
	for i, f := range ReportFormats {
		formats[i] = f
	}

	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.Required, validation.In(formats...)),
		validation.Field(&o.ImageBaseURL, is.URL),
	)
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
	// TrustedProxies lists the IPs or CIDR ranges whose X-Forwarded-For and
	// X-Real-IP headers are believed. Loopback peers are always trusted.
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Host, is.Host),
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&s.ReadTimeout, validation.Min(0)),
		validation.Field(&s.WriteTimeout, validation.Min(0)),
		validation.Field(&s.ShutdownTimeout, validation.Min(0)),
		validation.Field(&s.Environment, validation.In("development", "production")),
		validation.Field(&s.CORSOrigins, validation.Each(validation.By(validateCORSOrigin))),
		validation.Field(&s.TrustedProxies, validation.Each(validation.By(validateTrustedProxy))),
	)
}

func validateCORSOrigin(value interface{}) error {
	origin, _ := value.(string)
	if origin == "" {
		return errors.New("CORS origin cannot be empty")
	}
	if origin == "*" {
		return nil
	}

	// A single leading wildcard label is allowed: https://*.example.com
	u, err := url.Parse(strings.Replace(origin, "://*.", "://wildcard.", 1))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" {
		return fmt.Errorf("invalid CORS origin format: %s (want http(s)://host[:port])", origin)
	}
	return nil
}

// validateTrustedProxy accepts a single IP or a CIDR range
func validateTrustedProxy(value interface{}) error {
	entry, _ := value.(string)
	if net.ParseIP(entry) != nil {
		return nil
	}
	if _, _, err := net.ParseCIDR(entry); err == nil {
		return nil
	}
	return fmt.Errorf("invalid trusted proxy: %q (want an IP or CIDR range)", entry)
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins, defaulting to the local server address
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		port := s.Port
		if port <= 0 {
			port = 4280
		}
		return []string{
			fmt.Sprintf("http://localhost:%d", port),
			fmt.Sprintf("http://127.0.0.1:%d", port),
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool `toml:"auto_open"`
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Mode       string `toml:"mode"` // poll or notify
	IntervalMs int    `toml:"interval_ms"`
	DebounceMs int    `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Mode, validation.In(WatchModePoll, WatchModeNotify)),
		validation.Field(&w.IntervalMs, validation.Required.Error("watcher interval is required"), validation.Min(50)),
		validation.Field(&w.DebounceMs, validation.Min(0)),
	)
}

// GetMode returns the watcher mode with default
func (w WatcherConfig) GetMode() string {
	if w.Mode == "" {
		return WatchModePoll
	}
	return w.Mode
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
