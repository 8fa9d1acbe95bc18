package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

func TestCreateSessionGeneratesID(t *testing.T) {
	manager, _, _ := newTestEnv(t)

	sess, err := manager.CreateSession(context.Background(), "app", "user", "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Key().SessionID)
	assert.Equal(t, "app", sess.Key().AppName)
	assert.Equal(t, "user", sess.Key().UserID)
}

func TestCreateSessionIdempotentOnTriple(t *testing.T) {
	manager, _, _ := newTestEnv(t)
	ctx := context.Background()

	first, err := manager.CreateSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	second, err := manager.CreateSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestCreateSessionValidation(t *testing.T) {
	manager, _, _ := newTestEnv(t)

	_, err := manager.CreateSession(context.Background(), "", "user", "s1")
	assert.ErrorIs(t, err, config.ErrValidation)
	_, err = manager.CreateSession(context.Background(), "app", "", "s1")
	assert.ErrorIs(t, err, config.ErrValidation)
}

func TestConcurrentLimit(t *testing.T) {
	manager, _, _ := newTestEnv(t)
	ctx := context.Background()
	manager.SetConcurrentLimit(2)

	_, err := manager.CreateSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	_, err = manager.CreateSession(ctx, "app", "user", "s2")
	require.NoError(t, err)

	_, err = manager.CreateSession(ctx, "app", "user", "s3")
	assert.ErrorIs(t, err, config.ErrOverloaded)

	// Recreating an existing triple is not a new session.
	_, err = manager.CreateSession(ctx, "app", "user", "s1")
	assert.NoError(t, err)

	// Raising the cap unblocks creation; lowering it evicts nothing.
	manager.SetConcurrentLimit(3)
	_, err = manager.CreateSession(ctx, "app", "user", "s3")
	require.NoError(t, err)
	manager.SetConcurrentLimit(1)
	assert.Equal(t, 3, manager.Count())
}

func TestGetSessionMaterializesFromEngine(t *testing.T) {
	manager, _, services := newTestEnv(t)
	ctx := context.Background()

	// Unknown everywhere: nil without error.
	sess, err := manager.GetSession(ctx, "app", "user", "ghost")
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Known to the engine but not pooled: a wrapper is materialized.
	key := engine.SessionKey{AppName: "app", UserID: "user", SessionID: "s1"}
	_, err = services.Sessions.Create(ctx, key, nil)
	require.NoError(t, err)

	sess, err = manager.GetSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, key, sess.Key())

	// The wrapper is pooled: the next lookup returns the same instance.
	again, err := manager.GetSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	assert.Same(t, sess, again)
}

func TestListSessions(t *testing.T) {
	manager, _, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := manager.CreateSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	_, err = manager.CreateSession(ctx, "app", "user", "s2")
	require.NoError(t, err)
	_, err = manager.CreateSession(ctx, "app", "other-user", "s3")
	require.NoError(t, err)

	assert.Len(t, manager.ListSessions(ctx, "app", "user"), 2)
	assert.Len(t, manager.ListSessions(ctx, "app", "other-user"), 1)
	assert.Empty(t, manager.ListSessions(ctx, "other-app", "user"))
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	manager, _, services := newTestEnv(t)
	ctx := context.Background()

	_, err := manager.CreateSession(ctx, "app", "user", "s1")
	require.NoError(t, err)

	require.NoError(t, manager.DeleteSession(ctx, "app", "user", "s1"))
	require.NoError(t, manager.DeleteSession(ctx, "app", "user", "s1"))
	assert.Equal(t, 0, manager.Count())

	// The engine-side record is gone too, so GetSession stays nil.
	record, err := services.Sessions.Get(ctx, engine.SessionKey{AppName: "app", UserID: "user", SessionID: "s1"})
	require.NoError(t, err)
	assert.Nil(t, record)

	sess, err := manager.GetSession(ctx, "app", "user", "s1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCleanupInactiveSessions(t *testing.T) {
	manager, _, _ := newTestEnv(t)
	ctx := context.Background()

	idle, err := manager.CreateSession(ctx, "app", "user", "idle")
	require.NoError(t, err)
	_ = idle

	time.Sleep(20 * time.Millisecond)

	active, err := manager.CreateSession(ctx, "app", "user", "active")
	require.NoError(t, err)
	// Touch the active session so only the idle one ages out.
	events, err := active.ProcessMessage(ctx, "ping", "")
	require.NoError(t, err)
	drain(t, events)

	reaped := manager.CleanupInactiveSessions(ctx, 15*time.Millisecond)
	assert.Equal(t, 1, reaped)
	assert.Equal(t, 1, manager.Count())

	sess, err := manager.GetSession(ctx, "app", "user", "active")
	require.NoError(t, err)
	assert.NotNil(t, sess)
}
