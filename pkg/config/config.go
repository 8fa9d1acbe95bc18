// Package config holds bootstrap configuration, reserved identifiers and
// the sentinel errors shared by all managers.
package config

import "os"

// Storage selects the ConfigStore variant used for model, agent and MCP
// configs.
type Storage string

const (
	StorageMemory Storage = "memory"
	StorageSQL    Storage = "sql"
)

// Config is the bootstrap configuration for a Context. It is normally
// populated from environment variables; tests construct it directly.
type Config struct {
	// Storage selects "memory" or "sql" config stores.
	Storage Storage

	// DatabaseURL is the connection string for SQL stores. Required when
	// Storage is StorageSQL.
	DatabaseURL string

	// Default LLM settings. When all three are present the
	// ModelConfigManager caches a built-in default model config under
	// DefaultModelConfigID.
	DefaultLLMBaseURL string
	DefaultLLMAPIKey  string
	DefaultLLMModel   string

	// BootstrapFile is an optional YAML file with configs to register at
	// start. Empty means none.
	BootstrapFile string
}

// FromEnv builds a Config from ODA_* environment variables.
func FromEnv() Config {
	return Config{
		Storage:           Storage(getEnv("ODA_STORAGE", string(StorageMemory))),
		DatabaseURL:       os.Getenv("ODA_DATABASE_URL"),
		DefaultLLMBaseURL: os.Getenv("ODA_DEFAULT_LLM_BASE_URL"),
		DefaultLLMAPIKey:  os.Getenv("ODA_DEFAULT_LLM_API_KEY"),
		DefaultLLMModel:   os.Getenv("ODA_DEFAULT_LLM_MODEL"),
		BootstrapFile:     os.Getenv("ODA_BOOTSTRAP_FILE"),
	}
}

// HasDefaultLLM reports whether all three default LLM fields are set.
func (c Config) HasDefaultLLM() bool {
	return c.DefaultLLMBaseURL != "" && c.DefaultLLMAPIKey != "" && c.DefaultLLMModel != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
