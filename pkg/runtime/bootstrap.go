package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/one-dragon/onedragon-agent/pkg/agent"
	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/mcp"
	"github.com/one-dragon/onedragon-agent/pkg/model"
)

// Bootstrap is the declarative startup file. Models and agents are
// written through their managers so reserved-id and reference rules
// apply; MCP servers are registered as built-ins.
type Bootstrap struct {
	Models []model.Config `yaml:"models"`
	Mcps   []mcp.Config   `yaml:"mcp_servers"`
	Agents []agent.Config `yaml:"agents"`
}

// LoadBootstrap parses a bootstrap YAML file.
func LoadBootstrap(path string) (*Bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
	}
	var b Bootstrap
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
	}
	return &b, nil
}

// applyBootstrap registers the file's contents. Records that already
// exist are skipped so restarts against a persistent store succeed.
func (c *Context) applyBootstrap(ctx context.Context, path string) error {
	b, err := LoadBootstrap(path)
	if err != nil {
		return err
	}

	for _, mc := range b.Models {
		if err := c.models.Create(ctx, mc); err != nil {
			if errors.Is(err, config.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("model config %q: %w", mc.ModelID, err)
		}
	}
	for _, sc := range b.Mcps {
		if err := c.mcps.RegisterBuiltin(sc); err != nil {
			return fmt.Errorf("mcp server %q: %w", sc.McpID, err)
		}
	}
	for _, ac := range b.Agents {
		if err := c.agentConfigs.Create(ctx, ac); err != nil {
			if errors.Is(err, config.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("agent config %q: %w", ac.AgentName, err)
		}
	}

	slog.Info("Applied bootstrap file", "path", path,
		"models", len(b.Models), "mcp_servers", len(b.Mcps), "agents", len(b.Agents))
	return nil
}
