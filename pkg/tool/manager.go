// Package tool is the in-process registry of engine tool handles, keyed by
// (app_name, tool_id). Tools are registered in code at startup; there is
// no persistence tier.
package tool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

// Manager maps (app_name, tool_id) to engine tool handles. It accepts
// pre-built handles and auto-wrapped plain functions. The registry does not
// own tool lifetimes; tool-scoped resources are cleaned up by the session
// that referenced them.
type Manager struct {
	mu    sync.RWMutex
	tools map[string]map[string]engine.ToolHandle // app_name -> tool_id -> handle
}

// NewManager creates an empty tool registry.
func NewManager() *Manager {
	return &Manager{tools: make(map[string]map[string]engine.ToolHandle)}
}

// Register stores a pre-built tool handle. Duplicate registration within
// the same (app_name, tool_id) fails.
func (m *Manager) Register(handle engine.ToolHandle, appName, toolID string) error {
	if handle == nil {
		return fmt.Errorf("tool handle must not be nil: %w", config.ErrValidation)
	}
	if appName == "" || toolID == "" {
		return fmt.Errorf("app_name and tool_id are required: %w", config.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tools[appName][toolID]; ok {
		return fmt.Errorf("tool %q: %w", GlobalID(appName, toolID), config.ErrAlreadyExists)
	}
	if m.tools[appName] == nil {
		m.tools[appName] = make(map[string]engine.ToolHandle)
	}
	m.tools[appName][toolID] = handle

	slog.Info("Registered tool", "id", GlobalID(appName, toolID))
	return nil
}

// RegisterFunc wraps fn as an engine tool handle and registers it. The
// tool id doubles as the tool's name.
func (m *Manager) RegisterFunc(fn engine.ToolFunc, appName, toolID string) error {
	if fn == nil {
		return fmt.Errorf("fn must not be nil: %w", config.ErrValidation)
	}
	return m.Register(engine.NewFuncTool(toolID, "", fn), appName, toolID)
}

// Get returns the handle for (appName, toolID), or nil when absent.
func (m *Manager) Get(appName, toolID string) engine.ToolHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tools[appName][toolID]
}

// List returns registered handles keyed by "app_name:tool_id". An empty
// appName lists every app.
func (m *Manager) List(appName string) map[string]engine.ToolHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]engine.ToolHandle)
	for app, tools := range m.tools {
		if appName != "" && app != appName {
			continue
		}
		for id, handle := range tools {
			out[GlobalID(app, id)] = handle
		}
	}
	return out
}

// GlobalID formats the global tool identifier "app_name:tool_id".
func GlobalID(appName, toolID string) string {
	return fmt.Sprintf("%s:%s", appName, toolID)
}
