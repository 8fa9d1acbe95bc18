package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemorySessionStore keeps sessions in a process-local map. Suitable for
// the memory storage mode and for tests.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[SessionKey]*Session
}

// NewInMemorySessionStore creates an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[SessionKey]*Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, key SessionKey, state map[string]any) (*Session, error) {
	if key.SessionID == "" {
		key.SessionID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		return existing, nil
	}
	if state == nil {
		state = make(map[string]any)
	}
	session := &Session{Key: key, State: state}
	s.sessions[key] = session
	return session, nil
}

func (s *InMemorySessionStore) Get(_ context.Context, key SessionKey) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key], nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, key SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

func (s *InMemorySessionStore) List(_ context.Context, appName, userID string) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Session
	for key, session := range s.sessions {
		if key.AppName == appName && key.UserID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *InMemorySessionStore) AppendEvent(_ context.Context, key SessionKey, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return fmt.Errorf("session %s/%s/%s not found", key.AppName, key.UserID, key.SessionID)
	}
	session.Events = append(session.Events, event)
	return nil
}

// InMemoryArtifactStore keeps artifacts in a process-local map.
type InMemoryArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewInMemoryArtifactStore creates an empty in-memory artifact store.
func NewInMemoryArtifactStore() *InMemoryArtifactStore {
	return &InMemoryArtifactStore{artifacts: make(map[string][]byte)}
}

func artifactKey(key SessionKey, name string) string {
	return key.AppName + ":" + key.UserID + ":" + key.SessionID + ":" + name
}

func (s *InMemoryArtifactStore) Save(_ context.Context, key SessionKey, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifactKey(key, name)] = data
	return nil
}

func (s *InMemoryArtifactStore) Load(_ context.Context, key SessionKey, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.artifacts[artifactKey(key, name)]
	if !ok {
		return nil, fmt.Errorf("artifact %q not found", name)
	}
	return data, nil
}

// InMemoryMemoryStore is a naive substring-matching memory service.
type InMemoryMemoryStore struct {
	mu       sync.RWMutex
	sessions []*Session
}

// NewInMemoryMemoryStore creates an empty in-memory memory store.
func NewInMemoryMemoryStore() *InMemoryMemoryStore {
	return &InMemoryMemoryStore{}
}

func (s *InMemoryMemoryStore) AddSession(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *InMemoryMemoryStore) Search(_ context.Context, appName, userID, query string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Event
	for _, session := range s.sessions {
		if session.Key.AppName != appName || session.Key.UserID != userID {
			continue
		}
		for _, event := range session.Events {
			if strings.Contains(event.Content.Text(), query) {
				out = append(out, event)
			}
		}
	}
	return out, nil
}

// NewInMemoryServices bundles fresh in-memory stores with the given runner
// factory.
func NewInMemoryServices(runners RunnerFactory) *Services {
	return &Services{
		Sessions:  NewInMemorySessionStore(),
		Artifacts: NewInMemoryArtifactStore(),
		Memory:    NewInMemoryMemoryStore(),
		Runners:   runners,
	}
}
