package config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                   ":8787",
			ShutdownTimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Model: ModelConfig{
			Default:   "google-ai-studio/gemini-2.0-flash",
			APIKeyEnv: "NEXUS_AI_API_KEY",
		},
		Generation: GenerationConfig{
			TimeoutSeconds: 120,
			StreamBuffer:   16,
		},
		Sessions: SessionsConfig{
			IdleEvictionMinutes: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
