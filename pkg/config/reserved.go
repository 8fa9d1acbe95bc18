package config

// Reserved identifiers. Every mutation path checks these explicitly; the
// storage layer is never relied on to enforce them.
const (
	// DefaultModelConfigID is the model id of the built-in default LLM
	// config derived from bootstrap configuration.
	DefaultModelConfigID = "__default_llm_config"

	// DefaultApp is the synthetic app name the built-in default model
	// config is registered under.
	DefaultApp = "__default_app"

	// DefaultAgentName is the name of the built-in agent config. It is
	// memory-only and bound to DefaultModelConfigID.
	DefaultAgentName = "default"
)
