// Package agent holds agent configurations, the factory that materializes
// engine runners from them, and the retrying executor wrapping each run.
package agent

import (
	"fmt"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// Config describes one agent: its model binding, instruction, and the
// tools, MCP servers and sub-agents it uses. AgentName is unique within
// AppName.
type Config struct {
	AppName       string   `json:"app_name" yaml:"app_name"`
	AgentName     string   `json:"agent_name" yaml:"agent_name"`
	AgentType     string   `json:"agent_type" yaml:"agent_type"`
	Description   string   `json:"description" yaml:"description"`
	Instruction   string   `json:"instruction" yaml:"instruction"`
	ModelConfigID string   `json:"model_config_id" yaml:"model_config_id"`
	ToolIDs       []string `json:"tool_ids,omitempty" yaml:"tool_ids,omitempty"`
	McpIDs        []string `json:"mcp_ids,omitempty" yaml:"mcp_ids,omitempty"`
	SubAgentNames []string `json:"sub_agent_names,omitempty" yaml:"sub_agent_names,omitempty"`
}

// StoreKey implements storage.Record.
func (c Config) StoreKey() storage.Key {
	return storage.Key{AppName: c.AppName, ID: c.AgentName}
}

// Validate checks the structural invariants.
func (c Config) Validate() error {
	switch {
	case c.AppName == "":
		return fmt.Errorf("app_name is required: %w", config.ErrValidation)
	case c.AgentName == "":
		return fmt.Errorf("agent_name is required: %w", config.ErrValidation)
	case c.ModelConfigID == "":
		return fmt.Errorf("model_config_id is required: %w", config.ErrValidation)
	}
	return nil
}

// defaultConfig builds the built-in agent config for appName. It is bound
// to the reserved default model config and never persisted.
func defaultConfig(appName string) Config {
	return Config{
		AppName:       appName,
		AgentName:     config.DefaultAgentName,
		AgentType:     "llm_agent",
		Description:   "Built-in default conversational agent",
		Instruction:   "You are a helpful assistant.",
		ModelConfigID: config.DefaultModelConfigID,
	}
}
