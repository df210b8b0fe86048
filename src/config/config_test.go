package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, "google-ai-studio/gemini-2.0-flash", cfg.Model.Default)
	assert.Equal(t, "NEXUS_AI_API_KEY", cfg.Model.APIKeyEnv)
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, 30*time.Minute, cfg.IdleEviction())
	assert.Equal(t, 16, cfg.Generation.StreamBuffer)
	assert.NotEmpty(t, cfg.Database.Path)

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"missing model", func(c *Config) { c.Model.Default = "" }, true},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative timeout", func(c *Config) { c.Generation.TimeoutSeconds = -1 }, true},
		{"zero timeout ok", func(c *Config) { c.Generation.TimeoutSeconds = 0 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"warning level ok", func(c *Config) { c.Log.Level = "warning" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"json format ok", func(c *Config) { c.Log.Format = "json" }, false},
		{"bad base url", func(c *Config) { c.Model.BaseURL = "not a url" }, true},
		{"valid base url", func(c *Config) { c.Model.BaseURL = "https://api.example.com/v1" }, false},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := v.Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"addr": ":9999"},
		"model": {"default": "openai/gpt-4o"}
	}`), 0644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "openai/gpt-4o", cfg.Model.Default)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "NEXUS_AI_API_KEY", cfg.Model.APIKeyEnv)
	assert.Equal(t, 120, cfg.Generation.TimeoutSeconds)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadInvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NEXUS_ADDR", ":7000")
	t.Setenv("NEXUS_MODEL", "anthropic/claude-sonnet-4")
	t.Setenv("NEXUS_LOG_LEVEL", "debug")
	t.Setenv("NEXUS_GENERATION_TIMEOUT_SECONDS", "45")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.Model.Default)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 45, cfg.Generation.TimeoutSeconds)
}

func TestEnvironmentOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": {"addr": ":9999"}}`), 0644))
	t.Setenv("NEXUS_ADDR", ":7000")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("NEXUS_LOG_LEVEL", "verbose")

	_, err := NewLoader().Load("")
	assert.Error(t, err)
}
