package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

func TestRegisterAndGet(t *testing.T) {
	m := NewManager()

	handle := engine.NewFuncTool("adder", "adds numbers", func(context.Context, map[string]any) (any, error) {
		return 3, nil
	})
	require.NoError(t, m.Register(handle, "app", "adder"))

	got := m.Get("app", "adder")
	require.NotNil(t, got)
	assert.Equal(t, "adder", got.Name())

	assert.Nil(t, m.Get("app", "missing"))
	assert.Nil(t, m.Get("other-app", "adder"))
}

func TestRegisterValidation(t *testing.T) {
	m := NewManager()
	handle := engine.NewFuncTool("x", "", func(context.Context, map[string]any) (any, error) {
		return nil, nil
	})

	assert.ErrorIs(t, m.Register(nil, "app", "x"), config.ErrValidation)
	assert.ErrorIs(t, m.Register(handle, "", "x"), config.ErrValidation)
	assert.ErrorIs(t, m.Register(handle, "app", ""), config.ErrValidation)

	require.NoError(t, m.Register(handle, "app", "x"))
	assert.ErrorIs(t, m.Register(handle, "app", "x"), config.ErrAlreadyExists)
}

func TestRegisterFunc(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.RegisterFunc(func(_ context.Context, args map[string]any) (any, error) {
		return args["value"], nil
	}, "app", "echo"))
	assert.ErrorIs(t, m.RegisterFunc(nil, "app", "other"), config.ErrValidation)

	handle := m.Get("app", "echo")
	require.NotNil(t, handle)

	out, err := handle.Call(context.Background(), map[string]any{"value": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestListKeyedByGlobalID(t *testing.T) {
	m := NewManager()
	noop := func(context.Context, map[string]any) (any, error) { return nil, nil }

	require.NoError(t, m.RegisterFunc(noop, "app", "a"))
	require.NoError(t, m.RegisterFunc(noop, "app", "b"))
	require.NoError(t, m.RegisterFunc(noop, "other-app", "c"))

	scoped := m.List("app")
	require.Len(t, scoped, 2)
	assert.Contains(t, scoped, "app:a")
	assert.Contains(t, scoped, "app:b")

	all := m.List("")
	assert.Len(t, all, 3)
}
