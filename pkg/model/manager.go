package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// Manager is the model configuration manager. It owns a single built-in
// default config bound to config.DefaultModelConfigID; the default is
// derived from bootstrap configuration at construction and read-only
// thereafter. All other configs go through the injected store.
type Manager struct {
	store         storage.Store[Config]
	defaultConfig *Config
}

// NewManager creates a Manager. When all three default LLM fields of cfg
// are present the built-in default is cached; otherwise lookups of the
// reserved id return not-found.
func NewManager(store storage.Store[Config], cfg config.Config) *Manager {
	m := &Manager{store: store}
	if cfg.HasDefaultLLM() {
		m.defaultConfig = &Config{
			AppName: config.DefaultApp,
			ModelID: config.DefaultModelConfigID,
			BaseURL: cfg.DefaultLLMBaseURL,
			APIKey:  cfg.DefaultLLMAPIKey,
			Model:   cfg.DefaultLLMModel,
		}
		slog.Info("Cached built-in default model config", "model", cfg.DefaultLLMModel)
	}
	return m
}

// Create persists a new model config. The reserved default id is rejected.
func (m *Manager) Create(ctx context.Context, c Config) error {
	if c.ModelID == config.DefaultModelConfigID {
		return fmt.Errorf("model config %q: %w", c.ModelID, config.ErrReservedID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return m.store.Create(ctx, c)
}

// Get returns the config for (appName, modelID), or nil when absent. The
// reserved default id resolves to the cached default regardless of app.
func (m *Manager) Get(ctx context.Context, appName, modelID string) (*Config, error) {
	if modelID == config.DefaultModelConfigID {
		return m.defaultConfig, nil
	}
	c, ok, err := m.store.Get(ctx, storage.Key{AppName: appName, ID: modelID})
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// GetDefault returns the cached built-in default, or nil when bootstrap
// configuration did not provide one.
func (m *Manager) GetDefault() *Config {
	return m.defaultConfig
}

// Update replaces a persisted config. The reserved default id is rejected.
func (m *Manager) Update(ctx context.Context, c Config) error {
	if c.ModelID == config.DefaultModelConfigID {
		return fmt.Errorf("model config %q: %w", c.ModelID, config.ErrReservedID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return m.store.Update(ctx, c)
}

// Delete removes a persisted config. The reserved default id is rejected.
func (m *Manager) Delete(ctx context.Context, appName, modelID string) error {
	if modelID == config.DefaultModelConfigID {
		return fmt.Errorf("model config %q: %w", modelID, config.ErrReservedID)
	}
	return m.store.Delete(ctx, storage.Key{AppName: appName, ID: modelID})
}

// List returns all persisted configs followed by the built-in default, the
// default always last.
func (m *Manager) List(ctx context.Context) ([]Config, error) {
	configs, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if m.defaultConfig != nil {
		configs = append(configs, *m.defaultConfig)
	}
	return configs, nil
}

// Validate reports whether (appName, modelID) resolves to a usable config.
// The built-in default is usable from any app.
func (m *Manager) Validate(ctx context.Context, appName, modelID string) (bool, error) {
	c, err := m.Get(ctx, appName, modelID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	if modelID == config.DefaultModelConfigID {
		return true, nil
	}
	return c.AppName == appName, nil
}
