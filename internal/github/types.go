package github

import "time"

// Account is the subset of a GitHub user object the pipeline needs.
type Account struct {
	Login string `json:"login"`
}

// PullRequestSummary is a PR as returned by the list endpoint. The list
// payload omits size counters, which require a per-PR detail fetch.
type PullRequestSummary struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	HTMLURL   string     `json:"html_url"`
	State     string     `json:"state"`
	Draft     bool       `json:"draft"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	MergedAt  *time.Time `json:"merged_at"`
	User      *Account   `json:"user"`
}

// Login returns the author login, or empty when the account is gone.
func (pr PullRequestSummary) Login() string {
	if pr.User == nil {
		return ""
	}
	return pr.User.Login
}

// PullRequestDetail is the full PR object from the detail endpoint,
// carrying the size counters.
type PullRequestDetail struct {
	PullRequestSummary

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`
}

// Review is a formally submitted review event. Plain comments are not
// reviews and never anchor first-review timing.
type Review struct {
	State       string     `json:"state"`
	SubmittedAt *time.Time `json:"submitted_at"`
	User        *Account   `json:"user"`
}

// ReviewStateApproved marks an approving review.
const ReviewStateApproved = "APPROVED"

// Comment is an issue comment or an inline review comment on a PR.
type Comment struct {
	User      *Account  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
