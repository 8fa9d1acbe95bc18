package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
	"github.com/one-dragon/onedragon-agent/pkg/mcp"
	"github.com/one-dragon/onedragon-agent/pkg/model"
	"github.com/one-dragon/onedragon-agent/pkg/tool"
)

// Manager is the agent factory. Given an agent name and a session triple
// it resolves the agent config, its model, tools and MCP toolsets,
// constructs an engine runner bound to the session and wraps it in a
// retrying Executor. The factory is stateless beyond its held service
// references; every call produces a fresh executor.
type Manager struct {
	engine     *engine.Services
	tools      *tool.Manager
	mcps       *mcp.Manager
	models     *model.Manager
	configs    *ConfigManager
	maxRetries int
}

// NewManager creates an agent factory with the default retry budget.
func NewManager(services *engine.Services, tools *tool.Manager, mcps *mcp.Manager,
	models *model.Manager, configs *ConfigManager) *Manager {
	return &Manager{
		engine:     services,
		tools:      tools,
		mcps:       mcps,
		models:     models,
		configs:    configs,
		maxRetries: DefaultMaxRetries,
	}
}

// CreateAgent materializes an executor for agentName bound to the session
// triple.
func (m *Manager) CreateAgent(ctx context.Context, agentName, appName, userID, sessionID string) (*Executor, error) {
	cfg, err := m.configs.Get(ctx, appName, agentName)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("agent config %q: %w", agentName, config.ErrNotFound)
	}

	spec, err := m.buildSpec(ctx, cfg, map[string]bool{})
	if err != nil {
		return nil, err
	}

	runner, err := m.engine.Runners.NewRunner(ctx, appName, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner for agent %q: %w", agentName, err)
	}

	slog.Info("Created agent instance",
		"agent", agentName, "app", appName, "session_id", sessionID)
	return NewExecutor(runner, appName, userID, sessionID, m.maxRetries), nil
}

// buildSpec resolves the config's references into an engine agent spec.
// visited holds the agent names on the current resolution path so that
// cyclic sub-agent references fail instead of recursing forever.
func (m *Manager) buildSpec(ctx context.Context, cfg *Config, visited map[string]bool) (*engine.Spec, error) {
	if visited[cfg.AgentName] {
		return nil, fmt.Errorf("sub-agent cycle through %q: %w",
			cfg.AgentName, config.ErrInvalidReference)
	}
	visited[cfg.AgentName] = true
	defer delete(visited, cfg.AgentName)

	modelConfig, err := m.models.Get(ctx, cfg.AppName, cfg.ModelConfigID)
	if err != nil {
		return nil, err
	}
	if modelConfig == nil {
		return nil, fmt.Errorf("model config %q does not resolve for agent %q: %w",
			cfg.ModelConfigID, cfg.AgentName, config.ErrInvalidReference)
	}

	var tools []engine.ToolHandle
	for _, toolID := range cfg.ToolIDs {
		handle := m.tools.Get(cfg.AppName, toolID)
		if handle == nil {
			return nil, fmt.Errorf("tool %q does not resolve for agent %q: %w",
				toolID, cfg.AgentName, config.ErrInvalidReference)
		}
		tools = append(tools, handle)
	}

	var toolsets []engine.ToolsetHandle
	for _, mcpID := range cfg.McpIDs {
		toolset, err := m.mcps.CreateToolset(ctx, cfg.AppName, mcpID)
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP toolset %q for agent %q: %w",
				mcpID, cfg.AgentName, err)
		}
		toolsets = append(toolsets, toolset)
	}

	var subAgents []*engine.Spec
	for _, subName := range cfg.SubAgentNames {
		subConfig, err := m.configs.Get(ctx, cfg.AppName, subName)
		if err != nil {
			return nil, err
		}
		if subConfig == nil {
			return nil, fmt.Errorf("sub-agent %q does not resolve for agent %q: %w",
				subName, cfg.AgentName, config.ErrInvalidReference)
		}
		subSpec, err := m.buildSpec(ctx, subConfig, visited)
		if err != nil {
			return nil, err
		}
		subAgents = append(subAgents, subSpec)
	}

	return &engine.Spec{
		Name:        cfg.AgentName,
		Description: cfg.Description,
		Instruction: cfg.Instruction,
		Model: engine.Model{
			BaseURL: modelConfig.BaseURL,
			APIKey:  modelConfig.APIKey,
			Name:    modelConfig.Model,
		},
		Tools:     tools,
		Toolsets:  toolsets,
		SubAgents: subAgents,
	}, nil
}
