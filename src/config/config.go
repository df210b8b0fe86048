// Package config loads and validates server configuration from defaults, an
// optional JSON config file, and environment overrides, in that order.
package config

import "time"

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Model      ModelConfig      `json:"model"`
	Generation GenerationConfig `json:"generation"`
	Sessions   SessionsConfig   `json:"sessions"`
	Log        LogConfig        `json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                   string `json:"addr" validate:"required"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig configures durable storage.
type DatabaseConfig struct {
	Path string `json:"path" validate:"required"`
}

// ModelConfig configures the model provider boundary.
type ModelConfig struct {
	// Default is the model used by sessions that never picked one.
	Default string `json:"default" validate:"required"`
	// BaseURL points at an OpenAI-compatible completions API.
	BaseURL string `json:"base_url" validate:"omitempty,url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env" validate:"required"`
}

// GenerationConfig bounds a single model call.
type GenerationConfig struct {
	// TimeoutSeconds forces a stuck generation onto the failure path.
	// Zero disables the deadline.
	TimeoutSeconds int `json:"timeout_seconds" validate:"gte=0"`
	// StreamBuffer is the chunk channel capacity between the generation
	// loop and a streaming response writer.
	StreamBuffer int `json:"stream_buffer" validate:"gte=0"`
}

// SessionsConfig tunes the session registry.
type SessionsConfig struct {
	// IdleEvictionMinutes drops in-memory actors idle for this long.
	// Zero disables the sweep.
	IdleEvictionMinutes int `json:"idle_eviction_minutes" validate:"gte=0"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `json:"level" validate:"omitempty,log_level"`
	Format string `json:"format" validate:"omitempty,log_format"`
}

// GenerationTimeout returns the generation deadline as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful-shutdown window as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// IdleEviction returns the actor idle-eviction window as a duration.
func (c *Config) IdleEviction() time.Duration {
	return time.Duration(c.Sessions.IdleEvictionMinutes) * time.Minute
}
