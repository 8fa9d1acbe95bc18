// Package mcp manages MCP (Model Context Protocol) server configurations
// and produces toolset handles the engine can materialize into tools.
// Configs live in two disjoint tiers: built-in (memory only, immutable)
// and custom (persisted, mutable).
package mcp

import (
	"fmt"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// ServerType selects the transport used to reach an MCP server.
type ServerType string

const (
	ServerTypeStdio ServerType = "stdio"
	ServerTypeSSE   ServerType = "sse"
	ServerTypeHTTP  ServerType = "http"
)

// Config describes one MCP server. McpID is unique within (AppName, tier).
type Config struct {
	McpID       string     `json:"mcp_id" yaml:"mcp_id"`
	AppName     string     `json:"app_name" yaml:"app_name"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	ServerType  ServerType `json:"server_type" yaml:"server_type"`

	// Stdio transport.
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// SSE and HTTP transports.
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// ToolFilter restricts the toolset to the named tools; empty means all.
	ToolFilter []string `json:"tool_filter,omitempty" yaml:"tool_filter,omitempty"`

	// Connection parameters, consumed by the engine layer.
	TimeoutSeconds int `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryCount     int `json:"retry_count,omitempty" yaml:"retry_count,omitempty"`
}

// StoreKey implements storage.Record.
func (c Config) StoreKey() storage.Key {
	return storage.Key{AppName: c.AppName, ID: c.McpID}
}

// GlobalID returns the "app_name:mcp_id" identifier used as list key.
func (c Config) GlobalID() string {
	return GlobalID(c.AppName, c.McpID)
}

// GlobalID formats the global MCP config identifier.
func GlobalID(appName, mcpID string) string {
	return fmt.Sprintf("%s:%s", appName, mcpID)
}

// Validate checks the structural invariants: required base fields plus the
// server-type/parameter pairing (stdio requires command, sse/http require
// url).
func (c Config) Validate() error {
	switch {
	case c.AppName == "":
		return fmt.Errorf("app_name is required: %w", config.ErrValidation)
	case c.McpID == "":
		return fmt.Errorf("mcp_id is required: %w", config.ErrValidation)
	case c.Name == "":
		return fmt.Errorf("name is required: %w", config.ErrValidation)
	case c.Description == "":
		return fmt.Errorf("description is required: %w", config.ErrValidation)
	}

	switch c.ServerType {
	case ServerTypeStdio:
		if c.Command == "" {
			return fmt.Errorf("command is required for stdio servers: %w", config.ErrValidation)
		}
	case ServerTypeSSE, ServerTypeHTTP:
		if c.URL == "" {
			return fmt.Errorf("url is required for %s servers: %w", c.ServerType, config.ErrValidation)
		}
	default:
		return fmt.Errorf("unsupported server type %q: %w", c.ServerType, config.ErrValidation)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative: %w", config.ErrValidation)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry_count must not be negative: %w", config.ErrValidation)
	}
	return nil
}
