package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Loader loads and merges configuration from file and environment.
type Loader struct {
	validator *Validator
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{validator: NewValidator()}
}

// Load builds the configuration: defaults, then the config file (the given
// path, or the default location when it exists), then environment
// overrides. The result is validated before being returned.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	if err := l.mergeFile(config, path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// mergeFile overlays the JSON file at path onto config. Absent fields keep
// their current values.
func (l *Loader) mergeFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides overlays NEXUS_* environment variables.
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("NEXUS_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("NEXUS_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("NEXUS_MODEL"); v != "" {
		config.Model.Default = v
	}
	if v := os.Getenv("NEXUS_MODEL_BASE_URL"); v != "" {
		config.Model.BaseURL = v
	}
	if v := os.Getenv("NEXUS_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("NEXUS_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv("NEXUS_GENERATION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.TimeoutSeconds = n
		}
	}
}
