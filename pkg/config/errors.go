package config

import "errors"

var (
	// ErrNotFound indicates a lookup of an absent config or session
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a duplicate create
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidReference indicates a config points to a missing model, MCP server or tool
	ErrInvalidReference = errors.New("invalid configuration reference")

	// ErrReservedID indicates a mutation attempt on a built-in config
	ErrReservedID = errors.New("reserved identifier")

	// ErrNotPermitted indicates an operation forbidden for built-in configs
	ErrNotPermitted = errors.New("operation not permitted")

	// ErrValidation indicates a structural invariant violation on write
	ErrValidation = errors.New("validation failed")

	// ErrOverloaded indicates the concurrent-session cap was exceeded
	ErrOverloaded = errors.New("concurrent session limit reached")

	// ErrInvalidState indicates use of the context before start or after stop
	ErrInvalidState = errors.New("invalid lifecycle state")
)
