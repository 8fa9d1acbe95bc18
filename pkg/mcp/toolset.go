package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

// clientName identifies this runtime in the MCP handshake.
const clientName = "onedragon-agent"

// Toolset is the lazy handle returned by Manager.CreateToolset. It connects
// to the backing MCP server on first Tools call and exposes each server
// tool as an engine.ToolHandle. One Toolset owns one client session;
// closing it terminates the session (and the child process for stdio
// servers).
type Toolset struct {
	cfg Config

	mu      sync.Mutex
	session *mcpsdk.ClientSession
}

// NewToolset creates an unconnected toolset for cfg.
func NewToolset(cfg Config) *Toolset {
	return &Toolset{cfg: cfg}
}

// Tools connects if necessary and lists the server's tools, filtered by the
// config's tool filter.
func (t *Toolset) Tools(ctx context.Context) ([]engine.ToolHandle, error) {
	session, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	result, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools from %q: %w", t.cfg.GlobalID(), err)
	}

	handles := make([]engine.ToolHandle, 0, len(result.Tools))
	for _, tool := range result.Tools {
		if len(t.cfg.ToolFilter) > 0 && !slices.Contains(t.cfg.ToolFilter, tool.Name) {
			continue
		}
		handles = append(handles, &serverTool{session: session, name: tool.Name, description: tool.Description})
	}
	return handles, nil
}

// Close terminates the client session. Safe to call on an unconnected
// toolset.
func (t *Toolset) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

func (t *Toolset) connect(ctx context.Context) (*mcpsdk.ClientSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		return t.session, nil
	}

	transport, err := createTransport(t.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for %q: %w", t.cfg.GlobalID(), err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %q: %w", t.cfg.GlobalID(), err)
	}

	slog.Info("MCP server connected", "id", t.cfg.GlobalID(), "server_type", t.cfg.ServerType)
	t.session = session
	return session, nil
}

// serverTool adapts one remote MCP tool to engine.ToolHandle.
type serverTool struct {
	session     *mcpsdk.ClientSession
	name        string
	description string
}

func (s *serverTool) Name() string        { return s.name }
func (s *serverTool) Description() string { return s.description }

func (s *serverTool) Call(ctx context.Context, args map[string]any) (any, error) {
	result, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      s.name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("tool %q failed: %w", s.name, err)
	}
	return result, nil
}
