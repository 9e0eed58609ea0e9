// Package base holds configuration shared by the completion providers.
package base

import (
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// Auto-load .env if present (silent fail).
	_ = godotenv.Load()
}

// LoadEnv loads environment variables from the given .env files, or from
// ./.env when none are named.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// Config is the common provider configuration.
type Config struct {
	APIKey  string
	BaseURL string

	// DefaultModel is used when a request does not name a model.
	DefaultModel string

	// DebugPath writes JSONL records of upstream traffic when set.
	DebugPath string

	MaxOutputTokens *int
	Temperature     *float64

	ExtraHeaders map[string]string
}

// ApplyEnvDefaults fills empty APIKey/BaseURL values from the named
// environment variables.
func ApplyEnvDefaults(cfg *Config, apiKeyEnv, baseURLEnv string) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(baseURLEnv)
	}
}
