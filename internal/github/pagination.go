package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ErrStopPagination stops a walk early from inside a page callback.
// It is not reported to the caller.
var ErrStopPagination = errors.New("stop pagination")

// ListOptions bound a pull request walk.
type ListOptions struct {
	// State filters by PR state: open, closed or all.
	State string
	// Since keeps only PRs created on or after this instant. Because the
	// walk is newest-first, the first PR older than Since terminates the
	// walk entirely; this is what makes incremental fetches cheap.
	Since *time.Time
	// Until keeps only PRs created strictly before this instant.
	Until *time.Time
}

// Paginate walks a collection endpoint page by page, invoking fn with each
// non-empty batch of raw items until an empty page, ErrStopPagination or an
// error. Pages already handed to fn stay valid when a later page fails.
func (c *Client) Paginate(ctx context.Context, path string, query url.Values, fn func(items []json.RawMessage) error) error {
	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		body, err := c.Get(ctx, path, q)
		if err != nil {
			return err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return fmt.Errorf("unexpected non-list response for %s page %d: %w", path, page, err)
		}

		if len(items) == 0 {
			return nil
		}

		if err := fn(items); err != nil {
			if errors.Is(err, ErrStopPagination) {
				return nil
			}
			return err
		}

		if len(items) < c.perPage {
			return nil
		}
	}
}

// PullRequests walks a repository's pull requests newest-first, applying the
// creation-date window during the walk, and invokes fn for every summary in
// range. fn errors abort the walk.
func (c *Client) PullRequests(ctx context.Context, repo string, opts ListOptions, fn func(pr PullRequestSummary) error) error {
	state := opts.State
	if state == "" {
		state = "all"
	}

	query := url.Values{
		"state":     {state},
		"sort":      {"created"},
		"direction": {"desc"},
	}

	return c.Paginate(ctx, fmt.Sprintf("/repos/%s/pulls", repo), query, func(items []json.RawMessage) error {
		for _, item := range items {
			var pr PullRequestSummary
			if err := json.Unmarshal(item, &pr); err != nil {
				return fmt.Errorf("decode pull request summary: %w", err)
			}

			if opts.Since != nil && pr.CreatedAt.Before(*opts.Since) {
				// Newest-first: everything after this point is older still.
				return ErrStopPagination
			}
			if opts.Until != nil && !pr.CreatedAt.Before(*opts.Until) {
				continue
			}

			if err := fn(pr); err != nil {
				return err
			}
		}
		return nil
	})
}

// PullRequest fetches the full PR object carrying the size counters.
func (c *Client) PullRequest(ctx context.Context, repo string, number int) (*PullRequestDetail, error) {
	var detail PullRequestDetail
	if err := c.GetJSON(ctx, fmt.Sprintf("/repos/%s/pulls/%d", repo, number), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Reviews fetches all formally submitted reviews of a PR.
func (c *Client) Reviews(ctx context.Context, repo string, number int) ([]Review, error) {
	var reviews []Review
	err := c.Paginate(ctx, fmt.Sprintf("/repos/%s/pulls/%d/reviews", repo, number), nil, func(items []json.RawMessage) error {
		return appendDecoded(items, &reviews)
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// IssueComments fetches the PR conversation comments.
func (c *Client) IssueComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	var comments []Comment
	err := c.Paginate(ctx, fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number), nil, func(items []json.RawMessage) error {
		return appendDecoded(items, &comments)
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ReviewComments fetches the inline code review comments.
func (c *Client) ReviewComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	var comments []Comment
	err := c.Paginate(ctx, fmt.Sprintf("/repos/%s/pulls/%d/comments", repo, number), nil, func(items []json.RawMessage) error {
		return appendDecoded(items, &comments)
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func appendDecoded[T any](items []json.RawMessage, out *[]T) error {
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return fmt.Errorf("decode list item: %w", err)
		}
		*out = append(*out, v)
	}
	return nil
}
