package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// Manager holds the two MCP config tiers: built-ins in a process-local map
// and custom configs in a persistent store. Lookups consult built-ins
// first. Built-ins cannot be updated or unregistered.
type Manager struct {
	mu       sync.RWMutex
	builtins map[storage.Key]Config

	custom storage.Store[Config]
}

// NewManager creates a Manager over the given custom-config store.
func NewManager(custom storage.Store[Config]) *Manager {
	return &Manager{
		builtins: make(map[storage.Key]Config),
		custom:   custom,
	}
}

// RegisterBuiltin adds a built-in config. Collision within the built-in
// tier is rejected.
func (m *Manager) RegisterBuiltin(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := c.StoreKey()
	if _, ok := m.builtins[key]; ok {
		return fmt.Errorf("built-in MCP config %q: %w", c.GlobalID(), config.ErrAlreadyExists)
	}
	m.builtins[key] = c
	slog.Info("Registered built-in MCP config", "id", c.GlobalID())
	return nil
}

// UnregisterBuiltin always fails: built-in configs are permanent.
func (m *Manager) UnregisterBuiltin(appName, mcpID string) error {
	return fmt.Errorf("built-in MCP config %q: %w", GlobalID(appName, mcpID), config.ErrNotPermitted)
}

// RegisterCustom persists a custom config.
func (m *Manager) RegisterCustom(ctx context.Context, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := m.custom.Create(ctx, c); err != nil {
		return err
	}
	slog.Info("Registered custom MCP config", "id", c.GlobalID())
	return nil
}

// UpdateCustom replaces a custom config. Built-ins cannot be modified
// through this path: a key held by the built-in tier fails NotPermitted,
// a key held by neither tier fails NotFound on the custom store.
func (m *Manager) UpdateCustom(ctx context.Context, appName, mcpID string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AppName != appName || c.McpID != mcpID {
		return fmt.Errorf("config identity mismatch for %q: %w", GlobalID(appName, mcpID), config.ErrValidation)
	}
	m.mu.RLock()
	_, isBuiltin := m.builtins[storage.Key{AppName: appName, ID: mcpID}]
	m.mu.RUnlock()
	if isBuiltin {
		return fmt.Errorf("MCP config %q is built-in: %w", GlobalID(appName, mcpID), config.ErrNotPermitted)
	}
	return m.custom.Update(ctx, c)
}

// UnregisterCustom deletes a custom config. Idempotent.
func (m *Manager) UnregisterCustom(ctx context.Context, appName, mcpID string) error {
	return m.custom.Delete(ctx, storage.Key{AppName: appName, ID: mcpID})
}

// Get returns the config for (appName, mcpID), consulting the built-in
// tier first, or nil when neither tier has it.
func (m *Manager) Get(ctx context.Context, appName, mcpID string) (*Config, error) {
	key := storage.Key{AppName: appName, ID: mcpID}
	m.mu.RLock()
	if c, ok := m.builtins[key]; ok {
		m.mu.RUnlock()
		return &c, nil
	}
	m.mu.RUnlock()

	c, ok, err := m.custom.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// List returns the union of both tiers filtered by appName, keyed by
// "app_name:mcp_id".
func (m *Manager) List(ctx context.Context, appName string) (map[string]Config, error) {
	out := make(map[string]Config)

	m.mu.RLock()
	for _, c := range m.builtins {
		if c.AppName == appName {
			out[c.GlobalID()] = c
		}
	}
	m.mu.RUnlock()

	custom, err := m.custom.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range custom {
		if c.AppName == appName {
			out[c.GlobalID()] = c
		}
	}
	return out, nil
}

// CreateToolset resolves the config and returns a fresh toolset handle.
// Handles are not cached; each agent creation constructs its own.
func (m *Manager) CreateToolset(ctx context.Context, appName, mcpID string) (engine.ToolsetHandle, error) {
	c, err := m.Get(ctx, appName, mcpID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("MCP config %q: %w", GlobalID(appName, mcpID), config.ErrNotFound)
	}
	return NewToolset(*c), nil
}
