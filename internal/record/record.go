// Package record defines the durable pull request record model and the
// per-repository record set with its merge semantics.
package record

import (
	"math"
	"time"
)

// PullRequest is one durable row of PR lifecycle data, uniquely keyed by
// (Repo, Number). Nullable timestamps and derived hour fields use pointers:
// nil means the anchoring event has not happened (or the data was invalid).
type PullRequest struct {
	Repo   string `json:"repo"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
	Draft  bool   `json:"draft"`

	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`

	ReviewsCount           int        `json:"reviews_count"`
	FirstReviewAt          *time.Time `json:"first_review_at,omitempty"`
	TimeToFirstReviewHours *float64   `json:"time_to_first_review_hours,omitempty"`
	TimeToMergeHours       *float64   `json:"time_to_merge_hours,omitempty"`
	OpenTimeHours          *float64   `json:"open_time_hours,omitempty"`

	CommentsCount   int            `json:"comments_count"`
	CommentAuthors  map[string]int `json:"comment_authors,omitempty"`
	ApprovalsCount  int            `json:"approvals_count"`
	ApprovalAuthors []string       `json:"approval_authors,omitempty"`
}

// IsFinal reports whether the PR has reached a terminal state.
// Final records are never overwritten by observations that predate the closure.
func (pr PullRequest) IsFinal() bool {
	return pr.MergedAt != nil || pr.ClosedAt != nil
}

// ComputeDerivedHours fills the three derived timing fields from the raw
// anchors. A negative duration is a data error: the field stays nil.
// OpenTimeHours measures creation to close for closed-unmerged PRs and
// creation to now for PRs that are still open; merged PRs have no open time.
func (pr *PullRequest) ComputeDerivedHours(now time.Time) {
	pr.TimeToFirstReviewHours = hoursBetweenPtr(pr.CreatedAt, pr.FirstReviewAt)
	pr.TimeToMergeHours = hoursBetweenPtr(pr.CreatedAt, pr.MergedAt)

	pr.OpenTimeHours = nil
	if pr.MergedAt == nil {
		end := now
		if pr.ClosedAt != nil {
			end = *pr.ClosedAt
		}
		pr.OpenTimeHours = HoursBetween(pr.CreatedAt, end)
	}
}

// HoursBetween returns the duration from a to b in hours, rounded to two
// decimals. Returns nil when b precedes a (clock skew or malformed data).
func HoursBetween(a, b time.Time) *float64 {
	h := b.Sub(a).Hours()
	if h < 0 {
		return nil
	}
	h = math.Round(h*100) / 100
	return &h
}

func hoursBetweenPtr(a time.Time, b *time.Time) *float64 {
	if b == nil {
		return nil
	}
	return HoursBetween(a, *b)
}
