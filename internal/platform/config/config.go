// Package config loads application configuration from environment variables.
// All variables use the PORTAL_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Admin     AdminConfig
	Assistant AssistantConfig
	Ingest    IngestConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL means
// the portal runs on the in-memory store (plus the Redis snapshot, if any).
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis settings for the dataset snapshot. An empty URL
// disables snapshotting.
type CacheConfig struct {
	URL         string
	SnapshotKey string
}

// AdminConfig gates the import endpoints. Either a bcrypt hash (preferred)
// or a plain shared password must be set.
type AdminConfig struct {
	Password     string
	PasswordHash string
}

// AssistantConfig holds language-model provider settings for the chat
// widget. With no key configured the chat endpoints answer 503.
type AssistantConfig struct {
	GoogleAPIKey string
	GoogleModel  string
	OpenAIAPIKey string
}

// IngestConfig holds spreadsheet ingestion settings.
type IngestConfig struct {
	CurriculumPath  string // optional YAML overriding the built-in curriculum
	MaxUploadMB     int
	RemoteAllowlist []string // hosts remote imports may fetch from; empty allows any
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with PORTAL_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PORTAL_SERVER_PORT", 8080),
			Host: envStr("PORTAL_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("PORTAL_DATABASE_URL", ""),
			MaxConns: envInt("PORTAL_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("PORTAL_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL:         envStr("PORTAL_CACHE_URL", ""),
			SnapshotKey: envStr("PORTAL_CACHE_SNAPSHOT_KEY", "portal:roster"),
		},
		Admin: AdminConfig{
			Password:     envStr("PORTAL_ADMIN_PASSWORD", ""),
			PasswordHash: envStr("PORTAL_ADMIN_PASSWORD_HASH", ""),
		},
		Assistant: AssistantConfig{
			GoogleAPIKey: envStr("PORTAL_ASSISTANT_GOOGLE_API_KEY", ""),
			GoogleModel:  envStr("PORTAL_ASSISTANT_GOOGLE_MODEL", ""),
			OpenAIAPIKey: envStr("PORTAL_ASSISTANT_OPENAI_API_KEY", ""),
		},
		Ingest: IngestConfig{
			CurriculumPath:  envStr("PORTAL_INGEST_CURRICULUM_PATH", ""),
			MaxUploadMB:     envInt("PORTAL_INGEST_MAX_UPLOAD_MB", 16),
			RemoteAllowlist: envList("PORTAL_INGEST_REMOTE_ALLOWLIST"),
		},
		Log: LogConfig{
			Level:  envStr("PORTAL_LOG_LEVEL", "info"),
			Format: envStr("PORTAL_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("PORTAL_ADMIN_PASSWORD or PORTAL_ADMIN_PASSWORD_HASH is required")
	}
	if c.Ingest.MaxUploadMB <= 0 {
		return fmt.Errorf("PORTAL_INGEST_MAX_UPLOAD_MB must be positive, got %d", c.Ingest.MaxUploadMB)
	}
	return nil
}

// HasAssistant returns true if at least one chat provider is configured.
func (c *Config) HasAssistant() bool {
	return c.Assistant.GoogleAPIKey != "" || c.Assistant.OpenAIAPIKey != ""
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

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
