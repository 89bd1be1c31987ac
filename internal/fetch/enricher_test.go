package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/github"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}

func account(login string) *github.Account {
	return &github.Account{Login: login}
}

func TestEnricher_Enrich(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    1,
		Title:     "Add widget",
		HTMLURL:   "https://github.com/org/repo/pull/1",
		Draft:     false,
		CreatedAt: ts("2025-01-01T00:00:00Z"),
		MergedAt:  tsPtr("2025-01-01T10:00:00Z"),
		ClosedAt:  tsPtr("2025-01-01T10:00:00Z"),
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{Additions: 120, Deletions: 30, ChangedFiles: 4, Commits: 2})
	api.reviews[1] = []github.Review{
		{State: "COMMENTED", SubmittedAt: tsPtr("2025-01-01T04:00:00Z"), User: account("bob")},
		{State: "APPROVED", SubmittedAt: tsPtr("2025-01-01T02:00:00Z"), User: account("carol")},
		{State: "APPROVED", SubmittedAt: tsPtr("2025-01-01T05:00:00Z"), User: account("bob")},
	}
	api.issueComments[1] = []github.Comment{
		{User: account("bob")},
		{User: account("dave")},
	}
	api.reviewComments[1] = []github.Comment{
		{User: account("bob")},
	}

	e := NewEnricher(api, zap.NewNop().Sugar())
	pr, err := e.Enrich(context.Background(), "org/repo", summary)
	require.NoError(t, err)

	assert.Equal(t, "org/repo", pr.Repo)
	assert.Equal(t, 1, pr.Number)
	assert.Equal(t, "alice", pr.Author)
	assert.Equal(t, 120, pr.Additions)
	assert.Equal(t, 2, pr.Commits)

	assert.Equal(t, 3, pr.ReviewsCount)
	require.NotNil(t, pr.FirstReviewAt)
	assert.Equal(t, ts("2025-01-01T02:00:00Z"), *pr.FirstReviewAt)
	require.NotNil(t, pr.TimeToFirstReviewHours)
	assert.Equal(t, 2.0, *pr.TimeToFirstReviewHours)
	require.NotNil(t, pr.TimeToMergeHours)
	assert.Equal(t, 10.0, *pr.TimeToMergeHours)
	assert.Nil(t, pr.OpenTimeHours)

	assert.Equal(t, 2, pr.ApprovalsCount)
	assert.Equal(t, []string{"bob", "carol"}, pr.ApprovalAuthors)

	assert.Equal(t, 3, pr.CommentsCount)
	assert.Equal(t, map[string]int{"bob": 2, "dave": 1}, pr.CommentAuthors)
}

func TestEnricher_FirstReviewIgnoresComments(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    2,
		CreatedAt: ts("2025-01-01T00:00:00Z"),
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{})
	// Comments land long before any review; they must not anchor timing.
	api.issueComments[2] = []github.Comment{
		{User: account("bot"), CreatedAt: ts("2025-01-01T00:05:00Z")},
	}
	api.reviews[2] = []github.Review{
		{State: "APPROVED", SubmittedAt: tsPtr("2025-01-02T00:00:00Z"), User: account("bob")},
	}

	e := NewEnricher(api, zap.NewNop().Sugar())
	pr, err := e.Enrich(context.Background(), "org/repo", summary)
	require.NoError(t, err)

	require.NotNil(t, pr.FirstReviewAt)
	assert.Equal(t, ts("2025-01-02T00:00:00Z"), *pr.FirstReviewAt)
	require.NotNil(t, pr.TimeToFirstReviewHours)
	assert.Equal(t, 24.0, *pr.TimeToFirstReviewHours)
}

func TestEnricher_NoReviews(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    3,
		CreatedAt: ts("2025-01-01T00:00:00Z"),
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{})

	e := NewEnricher(api, zap.NewNop().Sugar())
	e.now = func() time.Time { return ts("2025-01-02T00:00:00Z") }

	pr, err := e.Enrich(context.Background(), "org/repo", summary)
	require.NoError(t, err)

	assert.Equal(t, 0, pr.ReviewsCount)
	assert.Nil(t, pr.FirstReviewAt)
	assert.Nil(t, pr.TimeToFirstReviewHours)
	assert.Nil(t, pr.TimeToMergeHours)
	require.NotNil(t, pr.OpenTimeHours)
	assert.Equal(t, 24.0, *pr.OpenTimeHours)
}

func TestEnricher_MergedImpliesClosedAtMerge(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    4,
		CreatedAt: ts("2025-01-01T00:00:00Z"),
		MergedAt:  tsPtr("2025-01-03T00:00:00Z"),
		ClosedAt:  tsPtr("2025-01-03T00:00:01Z"), // platform skew
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{})

	e := NewEnricher(api, zap.NewNop().Sugar())
	pr, err := e.Enrich(context.Background(), "org/repo", summary)
	require.NoError(t, err)

	require.NotNil(t, pr.ClosedAt)
	assert.Equal(t, *pr.MergedAt, *pr.ClosedAt)
}

func TestEnricher_NegativeDurationNulled(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    5,
		CreatedAt: ts("2025-01-10T00:00:00Z"),
		MergedAt:  tsPtr("2025-01-09T00:00:00Z"), // malformed upstream data
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{})

	e := NewEnricher(api, zap.NewNop().Sugar())
	pr, err := e.Enrich(context.Background(), "org/repo", summary)
	require.NoError(t, err)

	assert.Nil(t, pr.TimeToMergeHours)
}

func TestEnricher_SubResourceFailure(t *testing.T) {
	api := newFakeAPI()
	summary := github.PullRequestSummary{
		Number:    6,
		CreatedAt: ts("2025-01-01T00:00:00Z"),
		User:      account("alice"),
	}
	api.add(summary, github.PullRequestDetail{})
	api.reviewsErr[6] = &github.APIError{StatusCode: 500, Message: "boom"}

	e := NewEnricher(api, zap.NewNop().Sugar())
	_, err := e.Enrich(context.Background(), "org/repo", summary)
	assert.Error(t, err)
}
