// Package engine defines the facade consumed by the orchestration layer:
// session, artifact and memory stores, tool handles, and the runner that
// executes one agent against an LLM. The actual LLM execution engine lives
// behind these interfaces and is injected by the host.
package engine

import "context"

// SessionKey is the (app, user, session) triple identifying one session.
type SessionKey struct {
	AppName   string
	UserID    string
	SessionID string
}

// Session is the engine-side session record: identity, state and the
// accumulated event history.
type Session struct {
	Key    SessionKey
	State  map[string]any
	Events []*Event
}

// SessionStore persists engine sessions. Implementations must be safe for
// concurrent use.
//
// Get returns (nil, nil) when the triple is unknown; Delete of an unknown
// triple is a no-op.
type SessionStore interface {
	// Create creates a session. An empty SessionID asks the store to
	// generate one; the returned session carries the final key.
	Create(ctx context.Context, key SessionKey, state map[string]any) (*Session, error)
	Get(ctx context.Context, key SessionKey) (*Session, error)
	Delete(ctx context.Context, key SessionKey) error
	List(ctx context.Context, appName, userID string) ([]*Session, error)
	AppendEvent(ctx context.Context, key SessionKey, event *Event) error
}

// ArtifactStore persists binary artifacts produced during runs. Opaque to
// the orchestration layer; passed through to runner construction.
type ArtifactStore interface {
	Save(ctx context.Context, key SessionKey, name string, data []byte) error
	Load(ctx context.Context, key SessionKey, name string) ([]byte, error)
}

// MemoryStore is the engine's long-term memory service. Opaque to the
// orchestration layer.
type MemoryStore interface {
	AddSession(ctx context.Context, session *Session) error
	Search(ctx context.Context, appName, userID, query string) ([]*Event, error)
}

// ToolHandle is an engine-compatible tool. Pre-built handles are registered
// directly; plain Go functions are wrapped via FuncTool.
type ToolHandle interface {
	Name() string
	Description() string
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolsetHandle is an opaque bundle of external tools, produced from one
// MCP config. The engine materializes it when constructing an agent.
type ToolsetHandle interface {
	// Tools connects to the backing server if necessary and lists the
	// tools the set provides.
	Tools(ctx context.Context) ([]ToolHandle, error)
	Close() error
}

// Model describes the LLM an agent is bound to.
type Model struct {
	BaseURL string
	APIKey  string
	Name    string
}

// Spec describes one agent instance to construct: model binding,
// instruction, and resolved tool handles.
type Spec struct {
	Name        string
	Description string
	Instruction string
	Model       Model
	Tools       []ToolHandle
	Toolsets    []ToolsetHandle
	SubAgents   []*Spec
}

// Runner executes one agent bound to a session.
//
// Run returns the event stream and an error channel. The runner appends a
// non-nil newMessage to the session history before executing; a nil
// newMessage resumes from the current session state without adding a user
// turn. This is the facade requirement that makes retry-without-resubmission
// possible. Both channels are closed when the run terminates; at most one
// error is sent.
type Runner interface {
	Run(ctx context.Context, userID, sessionID string, newMessage *Content) (<-chan *Event, <-chan error)
	Close(ctx context.Context) error
}

// RunnerFactory constructs runners. The orchestration layer calls it once
// per agent instance; implementations wire in their own session, artifact
// and memory services.
type RunnerFactory interface {
	NewRunner(ctx context.Context, appName string, spec *Spec) (Runner, error)
}

// Services bundles the engine-side stores handed to the orchestration
// layer at context start.
type Services struct {
	Sessions  SessionStore
	Artifacts ArtifactStore
	Memory    MemoryStore
	Runners   RunnerFactory
}
