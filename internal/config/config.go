// Package config provides environment-based application configuration.
package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// GitHub holds GitHub API access configuration.
	GitHub GitHubConfig
	// Fetch holds acquisition tuning configuration.
	Fetch FetchConfig
	// Stats holds statistics engine configuration.
	Stats StatsConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Server holds report server configuration.
	Server ServerConfig
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		GitHub: LoadGitHubConfigFromEnv(),
		Fetch:  LoadFetchConfigFromEnv(),
		Stats:  LoadStatsConfigFromEnv(),
		Logger: LoadLoggerConfigFromEnv(),
		Server: LoadServerConfigFromEnv(),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.GitHub.Validate(); err != nil {
		return fmt.Errorf("github config validation failed: %w", err)
	}

	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch config validation failed: %w", err)
	}

	if err := c.Stats.Validate(); err != nil {
		return fmt.Errorf("stats config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	return nil
}
