package config

import "fmt"

// GitHubConfig holds GitHub API access configuration.
type GitHubConfig struct {
	// BaseURL is the API root (override for GitHub Enterprise or tests).
	BaseURL string
	// Token is the bearer token used for authentication.
	Token string
	// UserAgent is sent with every request, as required by the GitHub API.
	UserAgent string
}

// LoadGitHubConfigFromEnv loads GitHub configuration from environment variables.
// The token is read from GITHUB_TOKEN with GH_TOKEN as a fallback.
func LoadGitHubConfigFromEnv() GitHubConfig {
	token := GetEnv("GITHUB_TOKEN", "")
	if token == "" {
		token = GetEnv("GH_TOKEN", "")
	}

	return GitHubConfig{
		BaseURL:   GetEnv("GITHUB_API_URL", "https://api.github.com"),
		Token:     token,
		UserAgent: GetEnv("GITHUB_USER_AGENT", "pr-times"),
	}
}

// Validate validates GitHub configuration.
func (c GitHubConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL must not be empty")
	}
	if c.Token == "" {
		return fmt.Errorf("token is required: set GITHUB_TOKEN or GH_TOKEN")
	}
	return nil
}
