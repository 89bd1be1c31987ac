package config

import (
	"fmt"
	"time"

	"github.com/mkazarin/pr-times/pkg/retry"
)

// FetchConfig holds acquisition tuning configuration.
type FetchConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int
	// Sleep is an optional fixed delay between API calls (self-throttle).
	Sleep time.Duration
	// PerPage is the page size for collection endpoints (GitHub caps at 100).
	PerPage int
}

// LoadFetchConfigFromEnv loads fetch configuration from environment variables.
func LoadFetchConfigFromEnv() FetchConfig {
	return FetchConfig{
		Timeout:    GetEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxRetries: GetEnvInt("FETCH_RETRIES", 3),
		Sleep:      GetEnvDuration("FETCH_SLEEP", 0),
		PerPage:    GetEnvInt("FETCH_PER_PAGE", 100),
	}
}

// Validate validates fetch configuration.
func (c FetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be greater than 0")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("MaxRetries must be greater than 0")
	}
	if c.Sleep < 0 {
		return fmt.Errorf("Sleep must not be negative")
	}
	if c.PerPage <= 0 || c.PerPage > 100 {
		return fmt.Errorf("PerPage must be between 1 and 100")
	}
	return nil
}

// RetryConfig builds the backoff configuration used for transient failures.
func (c FetchConfig) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = c.MaxRetries
	cfg.InitialDelay = GetEnvDuration("FETCH_RETRY_INITIAL_DELAY", cfg.InitialDelay)
	cfg.MaxDelay = GetEnvDuration("FETCH_RETRY_MAX_DELAY", cfg.MaxDelay)
	cfg.Multiplier = GetEnvFloat("FETCH_RETRY_MULTIPLIER", cfg.Multiplier)
	return cfg
}
