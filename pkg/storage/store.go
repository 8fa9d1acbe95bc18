// Package storage provides the typed config stores backing the model,
// agent and MCP config managers. Records are keyed by (app_name, inner id);
// an in-memory variant covers process-lifetime storage and a SQL variant
// persists records as JSON rows.
package storage

import "context"

// Key identifies one config record: the owning app plus the kind-specific
// inner id (model_id, agent_name or mcp_id).
type Key struct {
	AppName string
	ID      string
}

// Record is implemented by every config type a Store can hold.
type Record interface {
	StoreKey() Key
}

// Store is the CRUD contract shared by all config kinds.
//
// Create fails with config.ErrAlreadyExists when the key exists; Update
// fails with config.ErrNotFound when it does not; Delete is idempotent.
// Get reports presence through its bool result. Operations are serialized
// per key; cross-store transactions are not offered.
type Store[T Record] interface {
	Create(ctx context.Context, record T) error
	Get(ctx context.Context, key Key) (T, bool, error)
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, key Key) error
	List(ctx context.Context) ([]T, error)
}
