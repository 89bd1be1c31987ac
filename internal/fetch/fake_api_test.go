package fetch

import (
	"context"
	"fmt"

	"github.com/mkazarin/pr-times/internal/github"
)

// fakeAPI is an in-memory API implementation for pipeline tests. Summaries
// are served newest-first, mirroring the real walker's order and window
// semantics.
type fakeAPI struct {
	summaries      []github.PullRequestSummary
	details        map[int]*github.PullRequestDetail
	reviews        map[int][]github.Review
	issueComments  map[int][]github.Comment
	reviewComments map[int][]github.Comment

	detailErr  map[int]error
	reviewsErr map[int]error
	listFailAt int // fail the walk just before this PR number is yielded; 0 disables

	detailCalls map[int]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		details:        make(map[int]*github.PullRequestDetail),
		reviews:        make(map[int][]github.Review),
		issueComments:  make(map[int][]github.Comment),
		reviewComments: make(map[int][]github.Comment),
		detailErr:      make(map[int]error),
		reviewsErr:     make(map[int]error),
		detailCalls:    make(map[int]int),
	}
}

func (f *fakeAPI) add(summary github.PullRequestSummary, detail github.PullRequestDetail) {
	f.summaries = append(f.summaries, summary)
	d := detail
	d.PullRequestSummary = summary
	f.details[summary.Number] = &d
}

func (f *fakeAPI) PullRequests(_ context.Context, _ string, opts github.ListOptions, fn func(pr github.PullRequestSummary) error) error {
	for _, pr := range f.summaries {
		if f.listFailAt != 0 && pr.Number == f.listFailAt {
			return &github.FetchError{URL: "list", Attempts: 3, Err: fmt.Errorf("boom")}
		}
		if opts.Since != nil && pr.CreatedAt.Before(*opts.Since) {
			return nil
		}
		if opts.Until != nil && !pr.CreatedAt.Before(*opts.Until) {
			continue
		}
		if err := fn(pr); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAPI) PullRequest(_ context.Context, _ string, number int) (*github.PullRequestDetail, error) {
	f.detailCalls[number]++
	if err := f.detailErr[number]; err != nil {
		return nil, err
	}
	d, ok := f.details[number]
	if !ok {
		return nil, &github.APIError{StatusCode: 404, Message: "not found"}
	}
	return d, nil
}

func (f *fakeAPI) Reviews(_ context.Context, _ string, number int) ([]github.Review, error) {
	if err := f.reviewsErr[number]; err != nil {
		return nil, err
	}
	return f.reviews[number], nil
}

func (f *fakeAPI) IssueComments(_ context.Context, _ string, number int) ([]github.Comment, error) {
	return f.issueComments[number], nil
}

func (f *fakeAPI) ReviewComments(_ context.Context, _ string, number int) ([]github.Comment, error) {
	return f.reviewComments[number], nil
}
