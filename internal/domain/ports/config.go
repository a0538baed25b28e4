package ports

import (
	"context"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// ConfigLoader defines the interface for loading configuration files.
// Every Load method decodes the file on top of a copy of base, so keys
// missing from the file keep the value they had in base.
type ConfigLoader interface {
	// LoadGlobal overlays the global configuration file; nil when it does not exist
	LoadGlobal(ctx context.Context, base *entities.Config) (*entities.Config, error)

	// LoadLocal overlays the local configuration file of dir; nil when it does not exist
	LoadLocal(ctx context.Context, dir string, base *entities.Config) (*entities.Config, error)

	// LoadFile overlays an explicitly named configuration file, which must exist
	LoadFile(ctx context.Context, path string, base *entities.Config) (*entities.Config, error)

	// CreateDefaults creates a default configuration file at the specified path
	CreateDefaults(ctx context.Context, path string) error

	// GetGlobalPath returns the path to the global configuration file
	GetGlobalPath() string

	// GetLocalPath returns the path to the local configuration file for a directory
	GetLocalPath(dir string) string
}

// ConfigMerger defines the interface for layering configuration overrides
type ConfigMerger interface {
	// Defaults returns a fresh default configuration
	Defaults() *entities.Config

	// ApplyFlags applies CLI flag overrides to a configuration
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars applies environment variable overrides to a configuration
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService defines the interface for the configuration service
type ConfigService interface {
	// LoadConfig loads the complete configuration with hierarchy and overrides
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// GetDefaultConfig returns the default configuration
	GetDefaultConfig() *entities.Config

	// ValidateConfig validates a configuration
	ValidateConfig(config *entities.Config) error

	// CreateGlobalConfig writes the default configuration to the global path
	// and returns that path. An existing file is only replaced when force is set.
	CreateGlobalConfig(ctx context.Context, force bool) (string, error)
}
