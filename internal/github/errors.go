package github

import (
	"errors"
	"fmt"
	"time"
)

// TransientError is a retryable failure: timeout, connection error or 5xx.
type TransientError struct {
	StatusCode int // 0 when the failure happened below HTTP
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient request failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RateLimitError reports an exhausted rate limit. It is not a failure: the
// client waits until ResetAt and repeats the request without consuming a
// retry attempt.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// APIError is a fatal response (auth failure, not found, malformed request).
// It is never retried and aborts only the fetch of the affected resource.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error %d: %s", e.StatusCode, e.Message)
}

// FetchError wraps the last transient failure after all retry attempts were
// exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error should trigger another attempt.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFetchFailed reports whether the error is an exhausted-retries failure.
func IsFetchFailed(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
