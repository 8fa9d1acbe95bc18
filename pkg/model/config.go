// Package model manages LLM model configurations: persisted custom configs
// plus the built-in default derived from bootstrap configuration.
package model

import (
	"fmt"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
)

// Config describes one LLM endpoint an agent can be bound to. ModelID is
// unique within AppName.
type Config struct {
	AppName string `json:"app_name" yaml:"app_name"`
	ModelID string `json:"model_id" yaml:"model_id"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
}

// StoreKey implements storage.Record.
func (c Config) StoreKey() storage.Key {
	return storage.Key{AppName: c.AppName, ID: c.ModelID}
}

// Validate checks the structural invariants: all fields required.
func (c Config) Validate() error {
	switch {
	case c.AppName == "":
		return fmt.Errorf("app_name is required: %w", config.ErrValidation)
	case c.ModelID == "":
		return fmt.Errorf("model_id is required: %w", config.ErrValidation)
	case c.BaseURL == "":
		return fmt.Errorf("base_url is required: %w", config.ErrValidation)
	case c.APIKey == "":
		return fmt.Errorf("api_key is required: %w", config.ErrValidation)
	case c.Model == "":
		return fmt.Errorf("model is required: %w", config.ErrValidation)
	}
	return nil
}
