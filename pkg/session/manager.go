package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/one-dragon/onedragon-agent/pkg/agent"
	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

// Manager owns the global session pool. Sessions are keyed by their
// (app, user, session) triple; the pool lock guards only map access so a
// long-running message turn never blocks creation of unrelated sessions.
//
// A zero maxConcurrent means unlimited. Lowering the cap never evicts
// sessions already in the pool.
type Manager struct {
	engine  *engine.Services
	factory *agent.Manager

	mu            sync.Mutex
	sessions      map[engine.SessionKey]*Session
	maxConcurrent int
}

// NewManager creates a session manager with no concurrency cap.
func NewManager(services *engine.Services, factory *agent.Manager) *Manager {
	return &Manager{
		engine:   services,
		factory:  factory,
		sessions: make(map[engine.SessionKey]*Session),
	}
}

// SetConcurrentLimit updates the session cap. n <= 0 removes the cap.
// Existing sessions above a lowered cap are kept.
func (m *Manager) SetConcurrentLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxConcurrent = n
}

// CreateSession creates a session for (appName, userID, sessionID),
// generating a session id when the caller omits one. Creation is
// idempotent: an existing triple returns the pooled session unchanged.
func (m *Manager) CreateSession(ctx context.Context, appName, userID, sessionID string) (*Session, error) {
	if appName == "" || userID == "" {
		return nil, fmt.Errorf("app name and user id are required: %w", config.ErrValidation)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	key := engine.SessionKey{AppName: appName, UserID: userID, SessionID: sessionID}

	m.mu.Lock()
	if existing, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	if m.maxConcurrent > 0 && len(m.sessions) >= m.maxConcurrent {
		m.mu.Unlock()
		return nil, fmt.Errorf("session limit %d reached: %w", m.maxConcurrent, config.ErrOverloaded)
	}
	session := newSession(key, m.factory)
	m.sessions[key] = session
	m.mu.Unlock()

	if _, err := m.engine.Sessions.Create(ctx, key, nil); err != nil {
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to create engine session: %w", err)
	}

	slog.Info("Created session", "app", appName, "user_id", userID, "session_id", sessionID)
	return session, nil
}

// GetSession returns the pooled session for the triple. On a pool miss it
// consults the engine's session store and materializes a wrapper when the
// engine knows the triple; otherwise it returns nil.
func (m *Manager) GetSession(ctx context.Context, appName, userID, sessionID string) (*Session, error) {
	key := engine.SessionKey{AppName: appName, UserID: userID, SessionID: sessionID}

	m.mu.Lock()
	if existing, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	record, err := m.engine.Sessions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up engine session: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[key]; ok {
		return existing, nil
	}
	session := newSession(key, m.factory)
	m.sessions[key] = session
	return session, nil
}

// ListSessions returns the pooled sessions for (appName, userID).
func (m *Manager) ListSessions(_ context.Context, appName, userID string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Session
	for key, session := range m.sessions {
		if key.AppName == appName && key.UserID == userID {
			out = append(out, session)
		}
	}
	return out
}

// DeleteSession removes the session from the pool, disposes its agents
// and deletes the engine-side session record. Deleting an unknown triple
// is a no-op.
func (m *Manager) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	key := engine.SessionKey{AppName: appName, UserID: userID, SessionID: sessionID}

	m.mu.Lock()
	session, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if ok {
		session.Cleanup(ctx)
	}
	if err := m.engine.Sessions.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete engine session: %w", err)
	}
	if ok {
		slog.Info("Deleted session", "app", appName, "user_id", userID, "session_id", sessionID)
	}
	return nil
}

// CleanupInactiveSessions deletes every session idle for longer than
// timeout. It is cooperative: the host decides when to invoke it.
func (m *Manager) CleanupInactiveSessions(ctx context.Context, timeout time.Duration) int {
	cutoff := time.Now().Add(-timeout)

	m.mu.Lock()
	var stale []engine.SessionKey
	for key, session := range m.sessions {
		if session.LastAccess().Before(cutoff) {
			stale = append(stale, key)
		}
	}
	m.mu.Unlock()

	reaped := 0
	for _, key := range stale {
		if err := m.DeleteSession(ctx, key.AppName, key.UserID, key.SessionID); err != nil {
			slog.Warn("Failed to reap idle session", "session_id", key.SessionID, "error", err)
			continue
		}
		reaped++
	}
	if reaped > 0 {
		slog.Info("Reaped idle sessions", "count", reaped, "timeout", timeout)
	}
	return reaped
}

// Shutdown disposes every pooled session without touching engine-side
// records, used during context stop.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[engine.SessionKey]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Cleanup(ctx)
	}
}

// Count reports the number of pooled sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
