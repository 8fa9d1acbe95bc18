package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ODA_STORAGE", "")
	t.Setenv("ODA_DATABASE_URL", "")

	cfg := FromEnv()
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.HasDefaultLLM())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ODA_STORAGE", "sql")
	t.Setenv("ODA_DATABASE_URL", "postgres://localhost/oda")
	t.Setenv("ODA_DEFAULT_LLM_BASE_URL", "https://llm.example.com")
	t.Setenv("ODA_DEFAULT_LLM_API_KEY", "secret")
	t.Setenv("ODA_DEFAULT_LLM_MODEL", "test-model")
	t.Setenv("ODA_BOOTSTRAP_FILE", "/etc/oda/bootstrap.yaml")

	cfg := FromEnv()
	assert.Equal(t, StorageSQL, cfg.Storage)
	assert.Equal(t, "postgres://localhost/oda", cfg.DatabaseURL)
	assert.Equal(t, "/etc/oda/bootstrap.yaml", cfg.BootstrapFile)
	assert.True(t, cfg.HasDefaultLLM())
}

func TestHasDefaultLLMRequiresAllFields(t *testing.T) {
	cfg := Config{
		DefaultLLMBaseURL: "https://llm.example.com",
		DefaultLLMAPIKey:  "secret",
	}
	assert.False(t, cfg.HasDefaultLLM())

	cfg.DefaultLLMModel = "test-model"
	assert.True(t, cfg.HasDefaultLLM())
}
