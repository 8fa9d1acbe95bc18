package engine

import "context"

// ToolFunc is the shape a plain Go function must have to be registered as
// a tool. Blocking implementations should honor ctx.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// FuncTool adapts a ToolFunc to ToolHandle.
type FuncTool struct {
	name        string
	description string
	fn          ToolFunc
}

// NewFuncTool wraps fn as an engine-compatible tool handle.
func NewFuncTool(name, description string, fn ToolFunc) *FuncTool {
	return &FuncTool{name: name, description: description, fn: fn}
}

func (t *FuncTool) Name() string        { return t.name }
func (t *FuncTool) Description() string { return t.description }

func (t *FuncTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}
