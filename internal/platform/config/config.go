// Package config loads application configuration from environment variables.
// All variables use the CRS_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	AI           AIConfig
	Auth         AuthConfig
	Log          LogConfig
	TemplatePath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL runs
// the server on in-memory stores.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL keeps sessions
// in process memory.
type CacheConfig struct {
	URL string
}

// AIConfig holds configuration for the AI providers.
type AIConfig struct {
	Google    GoogleConfig
	Anthropic AnthropicConfig
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey string
}

// AnthropicConfig holds Anthropic provider settings.
type AnthropicConfig struct {
	APIKey string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	SessionTTL int // hours
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with CRS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CRS_SERVER_PORT", 8080),
			Host: envStr("CRS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("CRS_DATABASE_URL", ""),
			MaxConns: envInt("CRS_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("CRS_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("CRS_CACHE_URL", ""),
		},
		AI: AIConfig{
			Google: GoogleConfig{
				APIKey: envStr("CRS_AI_GOOGLE_API_KEY", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey: envStr("CRS_AI_ANTHROPIC_API_KEY", ""),
			},
		},
		Auth: AuthConfig{
			SessionTTL: envInt("CRS_AUTH_SESSION_TTL", 24),
		},
		Log: LogConfig{
			Level:  envStr("CRS_LOG_LEVEL", "info"),
			Format: envStr("CRS_LOG_FORMAT", "json"),
		},
		TemplatePath: envStr("CRS_TEMPLATE_PATH", "./templates"),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("CRS_SERVER_PORT must be a valid port, got %d", c.Server.Port)
	}

	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}

	if c.Auth.SessionTTL < 1 {
		return fmt.Errorf("CRS_AUTH_SESSION_TTL must be positive, got %d", c.Auth.SessionTTL)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.Google.APIKey != "" || c.AI.Anthropic.APIKey != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
