package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/one-dragon/onedragon-agent/pkg/agent"
	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

// Session is a stateful conversation bound to one (app, user, session)
// triple. It owns a pool of agent executors, created lazily on first use
// and reused for the lifetime of the session. The pool lock guards only
// executor lookup and creation; it is released before any message is
// streamed so concurrent callers targeting different agents do not block
// each other's turns.
type Session struct {
	key     engine.SessionKey
	factory *agent.Manager

	mu         sync.Mutex
	agents     map[string]*agent.Executor
	lastAccess time.Time
}

func newSession(key engine.SessionKey, factory *agent.Manager) *Session {
	return &Session{
		key:        key,
		factory:    factory,
		agents:     make(map[string]*agent.Executor),
		lastAccess: time.Now(),
	}
}

// Key returns the session's identifying triple.
func (s *Session) Key() engine.SessionKey { return s.key }

// ProcessMessage routes message to the named agent and returns its event
// stream. An empty agentName targets the default agent. The executor is
// taken from the pool, or created and pooled on first use.
func (s *Session) ProcessMessage(ctx context.Context, message, agentName string) (<-chan *engine.Event, error) {
	if agentName == "" {
		agentName = config.DefaultAgentName
	}

	executor, err := s.executor(ctx, agentName)
	if err != nil {
		return nil, err
	}
	return executor.RunAsync(ctx, message), nil
}

func (s *Session) executor(ctx context.Context, agentName string) (*agent.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccess = time.Now()
	if executor, ok := s.agents[agentName]; ok {
		return executor, nil
	}

	executor, err := s.factory.CreateAgent(ctx, agentName, s.key.AppName, s.key.UserID, s.key.SessionID)
	if err != nil {
		return nil, err
	}
	s.agents[agentName] = executor
	return executor, nil
}

// AgentCount reports the number of pooled executors.
func (s *Session) AgentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.agents)
}

// LastAccess reports when the session last served a message.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Cleanup closes every pooled executor and empties the pool. The session
// remains usable afterwards; a subsequent message recreates its agent.
func (s *Session) Cleanup(ctx context.Context) {
	s.mu.Lock()
	agents := s.agents
	s.agents = make(map[string]*agent.Executor)
	s.mu.Unlock()

	for name, executor := range agents {
		if err := executor.Close(ctx); err != nil {
			slog.Warn("Failed to close agent executor",
				"agent", name, "session_id", s.key.SessionID, "error", err)
		}
	}
}
