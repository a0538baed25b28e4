package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// LocalConfigName is the per-project configuration file name
const LocalConfigName = "slidiff.toml"

// TOMLLoader implements the ConfigLoader interface using TOML files
type TOMLLoader struct {
	globalPath string
	localName  string
}

// NewTOMLLoader creates a new TOML configuration loader
func NewTOMLLoader() *TOMLLoader {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}

	return &TOMLLoader{
		globalPath: filepath.Join(configDir, "slidiff", "config.toml"),
		localName:  LocalConfigName,
	}
}

// LoadGlobal overlays the global configuration file on base
func (l *TOMLLoader) LoadGlobal(ctx context.Context, base *entities.Config) (*entities.Config, error) {
	return l.loadOptional(l.globalPath, base)
}

// LoadLocal overlays the local configuration file found in dir on base
func (l *TOMLLoader) LoadLocal(ctx context.Context, dir string, base *entities.Config) (*entities.Config, error) {
	return l.loadOptional(l.GetLocalPath(dir), base)
}

// LoadFile overlays the configuration file at path on base
func (l *TOMLLoader) LoadFile(ctx context.Context, path string, base *entities.Config) (*entities.Config, error) {
	return l.loadConfig(path, base)
}

// CreateDefaults creates a default configuration file at the specified path
func (l *TOMLLoader) CreateDefaults(ctx context.Context, path string) error {
	// Ensure directory exists
	if err := l.ensureConfigDir(path); err != nil {
		return err
	}

	file, err := os.Create(path) // #nosec G304 - path is controlled (global config path)
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := Encode(file, GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}

	return nil
}

// GetGlobalPath returns the path to the global configuration file
func (l *TOMLLoader) GetGlobalPath() string {
	return l.globalPath
}

// GetLocalPath returns the path to the local configuration file for a directory
func (l *TOMLLoader) GetLocalPath(dir string) string {
	return filepath.Join(dir, l.localName)
}

func (l *TOMLLoader) loadOptional(path string, base *entities.Config) (*entities.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil // optional layer
	}
	return l.loadConfig(path, base)
}

// loadConfig decodes path on top of a copy of base and validates the result
func (l *TOMLLoader) loadConfig(path string, base *entities.Config) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is from controlled sources (global/local/--config)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := deepCopy(base)
	if config == nil {
		config = GetDefaultConfig()
	}

	meta, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("invalid config in %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return config, nil
}

// ensureConfigDir ensures the configuration directory exists
func (l *TOMLLoader) ensureConfigDir(path string) error {
	dir := filepath.Dir(path)

	// Create config directory with restricted permissions (0750 = owner and group only)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	return nil
}

// Ensure TOMLLoader implements ports.ConfigLoader
var _ ports.ConfigLoader = (*TOMLLoader)(nil)
