package config

import "fmt"

// StatsConfig holds statistics engine configuration.
type StatsConfig struct {
	// MinAuthorPRs is the minimum PR count for a developer to appear in
	// per-developer rollups. Filters out noisy single-PR statistics.
	MinAuthorPRs int
}

// LoadStatsConfigFromEnv loads statistics configuration from environment variables.
func LoadStatsConfigFromEnv() StatsConfig {
	return StatsConfig{
		MinAuthorPRs: GetEnvInt("STATS_MIN_AUTHOR_PRS", 3),
	}
}

// Validate validates statistics configuration.
func (c StatsConfig) Validate() error {
	if c.MinAuthorPRs < 1 {
		return fmt.Errorf("MinAuthorPRs must be at least 1")
	}
	return nil
}
