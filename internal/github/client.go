// Package github is a rate-limit-aware client for the GitHub REST v3 API.
// It owns the retry/backoff policy, rate-limit waiting and the pagination
// walk; callers see typed resources and a small error taxonomy.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/config"
	"github.com/mkazarin/pr-times/pkg/retry"
)

const apiVersion = "2022-11-28"

// Client issues authenticated requests against the GitHub API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	perPage    int
	retryCfg   retry.Config
	throttle   time.Duration

	logger *zap.SugaredLogger

	// Injectable for tests so rate-limit waits don't sleep for real.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a client from GitHub access and fetch tuning configuration.
func New(gh config.GitHubConfig, fetch config.FetchConfig, logger *zap.SugaredLogger) *Client {
	cfg := fetch.RetryConfig()
	cfg.RetryIf = IsTransient

	return &Client{
		httpClient: &http.Client{Timeout: fetch.Timeout},
		baseURL:    strings.TrimRight(gh.BaseURL, "/"),
		token:      gh.Token,
		userAgent:  gh.UserAgent,
		perPage:    fetch.PerPage,
		retryCfg:   cfg,
		throttle:   fetch.Sleep,
		logger:     logger,
		now:        time.Now,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
}

// Get fetches one resource, retrying transient failures with backoff and
// waiting out rate limits. Rate-limit waits do not consume retry attempts.
// After exhausting retries the last transient failure is wrapped in a
// *FetchError; fatal API errors are returned as-is on the first attempt.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	body, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		for {
			data, err := c.do(ctx, u)

			var rl *RateLimitError
			if errors.As(err, &rl) {
				wait := rl.ResetAt.Sub(c.now()) + time.Second
				if wait < time.Second {
					wait = time.Second
				}
				c.logger.Warnw("rate limited, waiting for reset",
					"url", u,
					"reset_at", rl.ResetAt,
					"wait", wait,
				)
				if serr := c.sleep(ctx, wait); serr != nil {
					return nil, serr
				}
				continue
			}

			return data, err
		}
	})
	if err != nil {
		if IsTransient(err) {
			return nil, &FetchError{URL: u, Attempts: c.retryCfg.MaxAttempts, Err: err}
		}
		return nil, err
	}

	if c.throttle > 0 {
		if err := c.sleep(ctx, c.throttle); err != nil {
			return nil, err
		}
	}

	return body, nil
}

// GetJSON fetches one resource and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do performs a single request and classifies the outcome.
func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: err.Error()}
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Timeouts and connection failures are transient.
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500:
		return nil, &TransientError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("server error: %s", strings.TrimSpace(string(body))),
		}
	case isRateLimited(resp):
		return nil, &RateLimitError{ResetAt: rateLimitReset(resp, c.now())}
	default:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
}

// isRateLimited detects both the primary limit (403 with zero remaining)
// and the secondary limit (429).
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("x-ratelimit-remaining") == "0"
}

// rateLimitReset reads the reset time from response metadata, falling back
// to a fixed pause when the header is missing or malformed.
func rateLimitReset(resp *http.Response, now time.Time) time.Time {
	if v := resp.Header.Get("x-ratelimit-reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(epoch, 0).UTC()
		}
	}
	if v := resp.Header.Get("retry-after"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	return now.Add(time.Minute)
}
