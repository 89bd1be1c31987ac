// Package fetch implements incremental acquisition: per-PR enrichment and
// the per-repository orchestration loop.
package fetch

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/github"
	"github.com/mkazarin/pr-times/internal/record"
)

// API is the GitHub client surface the acquisition pipeline depends on.
type API interface {
	PullRequests(ctx context.Context, repo string, opts github.ListOptions, fn func(pr github.PullRequestSummary) error) error
	PullRequest(ctx context.Context, repo string, number int) (*github.PullRequestDetail, error)
	Reviews(ctx context.Context, repo string, number int) ([]github.Review, error)
	IssueComments(ctx context.Context, repo string, number int) ([]github.Comment, error)
	ReviewComments(ctx context.Context, repo string, number int) ([]github.Comment, error)
}

// Enricher turns a bare PR summary into a full record by fetching the PR
// detail and its review/comment sub-resources and deriving timing fields.
type Enricher struct {
	api    API
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewEnricher creates an enricher.
func NewEnricher(api API, logger *zap.SugaredLogger) *Enricher {
	return &Enricher{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Enrich fetches sub-resources for one PR and builds its record. Any
// sub-resource failure is returned to the caller, which skips the PR for
// this run; the stored state simply doesn't advance.
func (e *Enricher) Enrich(ctx context.Context, repo string, summary github.PullRequestSummary) (record.PullRequest, error) {
	pr := record.PullRequest{
		Repo:      repo,
		Number:    summary.Number,
		Title:     summary.Title,
		URL:       summary.HTMLURL,
		Author:    summary.Login(),
		Draft:     summary.Draft,
		CreatedAt: summary.CreatedAt.UTC(),
		ClosedAt:  utcPtr(summary.ClosedAt),
		MergedAt:  utcPtr(summary.MergedAt),
	}

	// A merged PR closes at its merge instant.
	if pr.MergedAt != nil {
		pr.ClosedAt = pr.MergedAt
	}

	detail, err := e.api.PullRequest(ctx, repo, summary.Number)
	if err != nil {
		return record.PullRequest{}, err
	}
	pr.Additions = detail.Additions
	pr.Deletions = detail.Deletions
	pr.ChangedFiles = detail.ChangedFiles
	pr.Commits = detail.Commits

	reviews, err := e.api.Reviews(ctx, repo, summary.Number)
	if err != nil {
		return record.PullRequest{}, err
	}
	applyReviews(&pr, reviews)

	issueComments, err := e.api.IssueComments(ctx, repo, summary.Number)
	if err != nil {
		return record.PullRequest{}, err
	}
	reviewComments, err := e.api.ReviewComments(ctx, repo, summary.Number)
	if err != nil {
		return record.PullRequest{}, err
	}
	applyComments(&pr, append(issueComments, reviewComments...))

	pr.ComputeDerivedHours(e.now())

	if pr.MergedAt != nil && pr.TimeToMergeHours == nil {
		e.logger.Warnw("merge predates creation, nulling merge time",
			"repo", repo, "number", pr.Number)
	}
	if pr.FirstReviewAt != nil && pr.TimeToFirstReviewHours == nil {
		e.logger.Warnw("first review predates creation, nulling review time",
			"repo", repo, "number", pr.Number)
	}

	return pr, nil
}

// applyReviews derives review counts, the first-review anchor and the
// approver list. Only formally submitted reviews count: plain comments never
// anchor first-review timing.
func applyReviews(pr *record.PullRequest, reviews []github.Review) {
	pr.ReviewsCount = len(reviews)

	approvers := make(map[string]struct{})
	for _, r := range reviews {
		if r.SubmittedAt != nil {
			submitted := r.SubmittedAt.UTC()
			if pr.FirstReviewAt == nil || submitted.Before(*pr.FirstReviewAt) {
				pr.FirstReviewAt = &submitted
			}
		}
		if r.State == github.ReviewStateApproved && r.User != nil && r.User.Login != "" {
			approvers[r.User.Login] = struct{}{}
		}
	}

	pr.ApprovalsCount = 0
	for _, r := range reviews {
		if r.State == github.ReviewStateApproved {
			pr.ApprovalsCount++
		}
	}

	if len(approvers) > 0 {
		pr.ApprovalAuthors = make([]string, 0, len(approvers))
		for login := range approvers {
			pr.ApprovalAuthors = append(pr.ApprovalAuthors, login)
		}
		sort.Strings(pr.ApprovalAuthors)
	}
}

// applyComments aggregates issue and inline review comments per author.
func applyComments(pr *record.PullRequest, comments []github.Comment) {
	pr.CommentsCount = len(comments)

	counts := make(map[string]int)
	for _, c := range comments {
		if c.User != nil && c.User.Login != "" {
			counts[c.User.Login]++
		}
	}
	if len(counts) > 0 {
		pr.CommentAuthors = counts
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
