package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ErrConfigExists is returned when `config init` would overwrite a file
var ErrConfigExists = errors.New("config file already exists")

// configPathFlag names an explicit config file that replaces the global and local layers
const configPathFlag = "config"

// ConfigService implements the configuration service business logic
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
	logger *slog.Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		loader: loader,
		merger: merger,
		logger: logger.With("service", "config"),
	}
}

// LoadConfig loads the complete configuration with hierarchy and overrides:
// defaults, global file, local file, environment, flags.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	config := s.GetDefaultConfig()

	if path, ok := flags[configPathFlag].(string); ok && path != "" {
		explicit, err := s.loader.LoadFile(ctx, path, config)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		s.logger.Debug("loaded config file", slog.String("path", path))
		config = explicit
	} else {
		global, err := s.loader.LoadGlobal(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
		if global != nil {
			s.logger.Debug("loaded global config", slog.String("path", s.loader.GetGlobalPath()))
			config = global
		}

		local, err := s.loader.LoadLocal(ctx, workingDir, config)
		if err != nil {
			return nil, fmt.Errorf("loading local config: %w", err)
		}
		if local != nil {
			s.logger.Debug("loaded local config", slog.String("path", s.loader.GetLocalPath(workingDir)))
			config = local
		}
	}

	// Apply environment variable overrides
	config = s.merger.ApplyEnvVars(config)

	// Apply CLI flag overrides (highest precedence)
	config = s.merger.ApplyFlags(config, flags)

	// Final validation
	if err := s.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	return config, nil
}

// GetDefaultConfig returns the default configuration
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Defaults()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	return config.Validate()
}

// CreateGlobalConfig writes the defaults to the global configuration path
func (s *ConfigService) CreateGlobalConfig(ctx context.Context, force bool) (string, error) {
	globalPath := s.loader.GetGlobalPath()

	if _, err := os.Stat(globalPath); err == nil && !force {
		return globalPath, fmt.Errorf("%w: %s", ErrConfigExists, globalPath)
	}

	if err := s.loader.CreateDefaults(ctx, globalPath); err != nil {
		return globalPath, fmt.Errorf("creating global config: %w", err)
	}

	s.logger.Info("created global config", slog.String("path", globalPath))
	return globalPath, nil
}

// Ensure ConfigService implements ports.ConfigService
var _ ports.ConfigService = (*ConfigService)(nil)
