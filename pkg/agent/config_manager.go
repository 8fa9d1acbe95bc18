package agent

import (
	"context"
	"fmt"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/mcp"
	"github.com/one-dragon/onedragon-agent/pkg/model"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// ConfigManager is the agent configuration manager. Writes are validated
// against the model and MCP managers so every persisted agent config has
// resolvable references at write time. The reserved "default" agent is
// memory-only and surfaced through Get, never List.
type ConfigManager struct {
	store  storage.Store[Config]
	models *model.Manager
	mcps   *mcp.Manager
}

// NewConfigManager creates a ConfigManager.
func NewConfigManager(store storage.Store[Config], models *model.Manager, mcps *mcp.Manager) *ConfigManager {
	return &ConfigManager{store: store, models: models, mcps: mcps}
}

// Create validates cross-references and persists a new agent config. The
// reserved name is rejected.
func (m *ConfigManager) Create(ctx context.Context, c Config) error {
	if c.AgentName == config.DefaultAgentName {
		return fmt.Errorf("agent %q: %w", c.AgentName, config.ErrReservedID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := m.validateReferences(ctx, c); err != nil {
		return err
	}
	return m.store.Create(ctx, c)
}

// Update validates cross-references and replaces a persisted config. The
// reserved name is rejected.
func (m *ConfigManager) Update(ctx context.Context, c Config) error {
	if c.AgentName == config.DefaultAgentName {
		return fmt.Errorf("agent %q: %w", c.AgentName, config.ErrReservedID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := m.validateReferences(ctx, c); err != nil {
		return err
	}
	return m.store.Update(ctx, c)
}

// Get returns the config for (appName, agentName), or nil when absent. The
// reserved name resolves to the built-in default config.
func (m *ConfigManager) Get(ctx context.Context, appName, agentName string) (*Config, error) {
	if agentName == config.DefaultAgentName {
		c := defaultConfig(appName)
		return &c, nil
	}
	c, ok, err := m.store.Get(ctx, storage.Key{AppName: appName, ID: agentName})
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// Delete removes a persisted config. The reserved name is rejected.
func (m *ConfigManager) Delete(ctx context.Context, appName, agentName string) error {
	if agentName == config.DefaultAgentName {
		return fmt.Errorf("agent %q: %w", agentName, config.ErrReservedID)
	}
	return m.store.Delete(ctx, storage.Key{AppName: appName, ID: agentName})
}

// List returns all persisted configs. The built-in default is not listed.
func (m *ConfigManager) List(ctx context.Context) ([]Config, error) {
	return m.store.List(ctx)
}

// IsBuiltin reports whether agentName denotes the built-in agent.
func (m *ConfigManager) IsBuiltin(agentName string) bool {
	return agentName == config.DefaultAgentName
}

// validateReferences checks that the model config and every MCP id the
// config names resolve for its app.
func (m *ConfigManager) validateReferences(ctx context.Context, c Config) error {
	ok, err := m.models.Validate(ctx, c.AppName, c.ModelConfigID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model config %q does not resolve for app %q: %w",
			c.ModelConfigID, c.AppName, config.ErrInvalidReference)
	}
	for _, mcpID := range c.McpIDs {
		mcpConfig, err := m.mcps.Get(ctx, c.AppName, mcpID)
		if err != nil {
			return err
		}
		if mcpConfig == nil {
			return fmt.Errorf("MCP config %q does not resolve for app %q: %w",
				mcpID, c.AppName, config.ErrInvalidReference)
		}
	}
	return nil
}
