// Package config loads and validates engine configuration from files,
// environment variables and CLI flags.
package config

import (
	"fmt"
	"time"
)

// Defaults applied before any config source is loaded.
const (
	DefaultHost                = "127.0.0.1"
	DefaultPort                = 8000
	DefaultStatePath           = "querymind.db"
	DefaultDataDir             = "data"
	DefaultQueryTimeoutSeconds = 30
	DefaultMaxRows             = 1000
	DefaultMaxUploadMB         = 50
	DefaultEmbeddingDim        = 384
)

// Config holds the full engine configuration.
type Config struct {
	Host                string `koanf:"host"`
	Port                int    `koanf:"port"`
	StatePath           string `koanf:"state_path"`
	DataDir             string `koanf:"data_dir"`
	WatchDir            string `koanf:"watch_dir"`
	SessionSecret       string `koanf:"session_secret"`
	QueryTimeoutSeconds int    `koanf:"query_timeout_seconds"`
	MaxRows             int    `koanf:"max_rows"`
	MaxUploadMB         int    `koanf:"max_upload_mb"`
	EmbeddingDim        int    `koanf:"embedding_dim"`
	Verbose             bool   `koanf:"verbose"`
}

// QueryTimeout returns the query timeout as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// Addr returns the host:port pair the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.QueryTimeoutSeconds < 1 {
		return fmt.Errorf("query_timeout_seconds must be positive, got %d", c.QueryTimeoutSeconds)
	}
	if c.MaxRows < 1 {
		return fmt.Errorf("max_rows must be positive, got %d", c.MaxRows)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	return nil
}
