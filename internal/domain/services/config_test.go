package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// Mock implementations for testing

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context, base *entities.Config) (*entities.Config, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string, base *entities.Config) (*entities.Config, error) {
	args := m.Called(ctx, dir, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadFile(ctx context.Context, path string, base *entities.Config) (*entities.Config, error) {
	args := m.Called(ctx, path, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Defaults() *entities.Config {
	args := m.Called()
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func testConfig(port int) *entities.Config {
	return &entities.Config{
		Parser:  entities.ParserConfig{Boundary: entities.BoundaryHeading, SplitLevel: 2},
		Output:  entities.OutputConfig{Format: entities.FormatText},
		Server:  entities.ServerConfig{Host: "localhost", Port: port},
		Watcher: entities.WatcherConfig{Mode: entities.WatchModePoll, IntervalMs: 200},
		Logging: entities.LoggingConfig{Level: "info"},
	}
}

func TestConfigService_LoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("layers defaults, global, local, env and flags", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)

		defaults := testConfig(1)
		global := testConfig(2)
		local := testConfig(3)
		env := testConfig(4)
		final := testConfig(5)
		flags := map[string]interface{}{"port": 5}

		merger.On("Defaults").Return(defaults)
		loader.On("LoadGlobal", ctx, defaults).Return(global, nil)
		loader.On("GetGlobalPath").Return("/home/u/.config/slidiff/config.toml")
		loader.On("LoadLocal", ctx, "/work", global).Return(local, nil)
		loader.On("GetLocalPath", "/work").Return("/work/slidiff.toml")
		merger.On("ApplyEnvVars", local).Return(env)
		merger.On("ApplyFlags", env, flags).Return(final)

		service := NewConfigService(loader, merger, nil)
		config, err := service.LoadConfig(ctx, "/work", flags)

		require.NoError(t, err)
		assert.Same(t, final, config)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("missing files keep the previous layer", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		defaults := testConfig(1)

		merger.On("Defaults").Return(defaults)
		loader.On("LoadGlobal", ctx, defaults).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/work", defaults).Return(nil, nil)
		merger.On("ApplyEnvVars", defaults).Return(defaults)
		merger.On("ApplyFlags", defaults, mock.Anything).Return(defaults)

		config, err := NewConfigService(loader, merger, nil).LoadConfig(ctx, "/work", nil)

		require.NoError(t, err)
		assert.Same(t, defaults, config)
		loader.AssertNotCalled(t, "GetGlobalPath")
	})

	t.Run("explicit config file replaces global and local", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		defaults := testConfig(1)
		explicit := testConfig(7)
		flags := map[string]interface{}{"config": "/tmp/custom.toml"}

		merger.On("Defaults").Return(defaults)
		loader.On("LoadFile", ctx, "/tmp/custom.toml", defaults).Return(explicit, nil)
		merger.On("ApplyEnvVars", explicit).Return(explicit)
		merger.On("ApplyFlags", explicit, flags).Return(explicit)

		config, err := NewConfigService(loader, merger, nil).LoadConfig(ctx, "/work", flags)

		require.NoError(t, err)
		assert.Equal(t, 7, config.Server.Port)
		loader.AssertNotCalled(t, "LoadGlobal", mock.Anything, mock.Anything)
		loader.AssertNotCalled(t, "LoadLocal", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("global load error", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		defaults := testConfig(1)

		merger.On("Defaults").Return(defaults)
		loader.On("LoadGlobal", ctx, defaults).Return(nil, errors.New("permission denied"))

		_, err := NewConfigService(loader, merger, nil).LoadConfig(ctx, "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local load error", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		defaults := testConfig(1)

		merger.On("Defaults").Return(defaults)
		loader.On("LoadGlobal", ctx, defaults).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/work", defaults).Return(nil, errors.New("bad toml"))

		_, err := NewConfigService(loader, merger, nil).LoadConfig(ctx, "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("invalid final config", func(t *testing.T) {
		loader := new(MockConfigLoader)
		merger := new(MockConfigMerger)
		defaults := testConfig(1)
		invalid := testConfig(70000)

		merger.On("Defaults").Return(defaults)
		loader.On("LoadGlobal", ctx, defaults).Return(nil, nil)
		loader.On("LoadLocal", ctx, "/work", defaults).Return(nil, nil)
		merger.On("ApplyEnvVars", defaults).Return(defaults)
		merger.On("ApplyFlags", defaults, mock.Anything).Return(invalid)

		_, err := NewConfigService(loader, merger, nil).LoadConfig(ctx, "/work", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(new(MockConfigLoader), new(MockConfigMerger), nil)

	assert.EqualError(t, service.ValidateConfig(nil), "config cannot be nil")
	assert.NoError(t, service.ValidateConfig(testConfig(8080)))
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		loader := new(MockConfigLoader)
		loader.On("GetGlobalPath").Return(path)
		loader.On("CreateDefaults", ctx, path).Return(nil)

		got, err := NewConfigService(loader, new(MockConfigMerger), nil).CreateGlobalConfig(ctx, false)

		require.NoError(t, err)
		assert.Equal(t, path, got)
		loader.AssertExpectations(t)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[parser]\n"), 0644))
		loader := new(MockConfigLoader)
		loader.On("GetGlobalPath").Return(path)

		_, err := NewConfigService(loader, new(MockConfigMerger), nil).CreateGlobalConfig(ctx, false)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigExists)
		loader.AssertNotCalled(t, "CreateDefaults", mock.Anything, mock.Anything)
	})

	t.Run("overwrites with force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[parser]\n"), 0644))
		loader := new(MockConfigLoader)
		loader.On("GetGlobalPath").Return(path)
		loader.On("CreateDefaults", ctx, path).Return(nil)

		_, err := NewConfigService(loader, new(MockConfigMerger), nil).CreateGlobalConfig(ctx, true)

		require.NoError(t, err)
		loader.AssertExpectations(t)
	})

	t.Run("propagates loader errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		loader := new(MockConfigLoader)
		loader.On("GetGlobalPath").Return(path)
		loader.On("CreateDefaults", ctx, path).Return(errors.New("read-only"))

		_, err := NewConfigService(loader, new(MockConfigMerger), nil).CreateGlobalConfig(ctx, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "read-only")
	})
}
