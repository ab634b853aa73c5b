// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific API key lookup
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/parley-chat/parley/llm"
)

// Storage backend names accepted in PARLEY_STORAGE.
const (
	StorageMemory   = "memory"
	StorageSqlite   = "sqlite"
	StoragePostgres = "postgres"
)

// Settings holds all application configuration.
type Settings struct {
	Server  ServerConfig
	Storage StorageConfig
	LLM     LLMConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string
	// AuthToken, when non-empty, is the bearer token required on API
	// requests. Empty disables authentication.
	AuthToken string
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Backend is one of memory, sqlite, postgres.
	Backend string
	// SqlitePath is the database file for the sqlite backend.
	SqlitePath string
	// DatabaseURL is the postgres connection URL for the postgres backend.
	DatabaseURL string
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   uint32
	Temperature float32
}

// API key environment variables per canonical provider name.
var apiKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// New loads settings from environment variables, applying defaults.
// Returns an error for unknown backends/providers or unparseable values.
func New() (Settings, error) {
	backend := strings.ToLower(getEnv("PARLEY_STORAGE", StorageMemory))
	switch backend {
	case StorageMemory, StorageSqlite, StoragePostgres:
	default:
		return Settings{}, fmt.Errorf("unknown storage backend: %q", backend)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if backend == StoragePostgres && databaseURL == "" {
		return Settings{}, fmt.Errorf("DATABASE_URL must be set for the postgres backend")
	}

	provider := llm.CanonicalProvider(getEnv("LLM_PROVIDER", "anthropic"))
	keyEnv, ok := apiKeyEnv[provider]
	if !ok {
		return Settings{}, fmt.Errorf("unknown provider: %q", provider)
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 1024)
	if err != nil {
		return Settings{}, err
	}
	temperature, err := getEnvFloat32("LLM_TEMPERATURE", 0)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Server: ServerConfig{
			Addr:      getEnv("PARLEY_ADDR", ":3000"),
			AuthToken: os.Getenv("PARLEY_AUTH_TOKEN"),
		},
		Storage: StorageConfig{
			Backend:     backend,
			SqlitePath:  getEnv("PARLEY_SQLITE_PATH", "chat.db"),
			DatabaseURL: databaseURL,
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       os.Getenv("LLM_MODEL"),
			APIKey:      os.Getenv(keyEnv),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
	}, nil
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat32(key string, defaultVal float32) (float32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return float32(f), nil
}
