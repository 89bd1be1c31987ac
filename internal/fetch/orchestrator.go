package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/github"
	"github.com/mkazarin/pr-times/internal/store"
)

// Options tune one acquisition run.
type Options struct {
	// State filters PRs by state: open, closed or all (default all).
	State string
	// Since bounds the walk to PRs created on or after this instant.
	Since *time.Time
	// Until bounds the walk to PRs created strictly before this instant.
	Until *time.Time
	// ForceFullRefresh ignores the highest known number and re-enriches
	// every PR, repairing records that went stale while closed upstream.
	ForceFullRefresh bool
}

// Result summarizes one repository's acquisition.
type Result struct {
	Repo      string
	Fetched   int
	Skipped   int
	Failed    int
	Completed bool
	Err       error
}

// NoProgress reports whether the repository failed before persisting
// anything new. Only such repositories make the whole run exit non-zero.
func (r Result) NoProgress() bool {
	return r.Err != nil && r.Fetched == 0
}

// Orchestrator runs the incremental acquisition pipeline: paginate, enrich,
// persist, one repository at a time, one PR at a time.
type Orchestrator struct {
	api      API
	store    store.Store
	enricher *Enricher
	logger   *zap.SugaredLogger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(api API, st store.Store, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		api:      api,
		store:    st,
		enricher: NewEnricher(api, logger),
		logger:   logger,
	}
}

// Run acquires all repositories sequentially. A failed repository never
// rolls back its durable partial progress and never aborts the others.
func (o *Orchestrator) Run(ctx context.Context, repos []string, opts Options) []Result {
	results := make([]Result, 0, len(repos))
	for _, repo := range repos {
		res := o.runRepo(ctx, repo, opts)

		if res.Err != nil {
			o.logger.Errorw("repository acquisition incomplete",
				"repo", repo,
				"fetched", res.Fetched,
				"failed", res.Failed,
				"error", res.Err,
			)
		} else {
			o.logger.Infow("repository acquisition complete",
				"repo", repo,
				"fetched", res.Fetched,
				"skipped", res.Skipped,
				"failed", res.Failed,
			)
		}

		results = append(results, res)
	}
	return results
}

func (o *Orchestrator) runRepo(ctx context.Context, repo string, opts Options) Result {
	res := Result{Repo: repo}

	set, err := o.store.Load(repo)
	if err != nil {
		res.Err = err
		return res
	}

	highest := 0
	if !opts.ForceFullRefresh {
		if n, ok := set.HighestNumber(); ok {
			highest = n
			o.logger.Infow("resuming incremental acquisition",
				"repo", repo, "highest_known_number", n)
		}
	}

	listOpts := github.ListOptions{
		State: opts.State,
		Since: opts.Since,
		Until: opts.Until,
	}

	walkErr := o.api.PullRequests(ctx, repo, listOpts, func(summary github.PullRequestSummary) error {
		// Known and finalized records never change upstream; skip them.
		// Still-open records at or below the highest known number are
		// re-enriched so closures and late reviews are picked up.
		if !opts.ForceFullRefresh && summary.Number <= highest {
			if stored, ok := set.Get(summary.Number); ok && stored.IsFinal() {
				res.Skipped++
				return nil
			}
		}

		pr, err := o.enricher.Enrich(ctx, repo, summary)
		if err != nil {
			// Contained: this PR is retried on the next invocation since
			// its stored state did not advance.
			o.logger.Warnw("enrichment failed, skipping PR for this run",
				"repo", repo, "number", summary.Number, "error", err)
			res.Failed++
			return nil
		}

		// Durability point: the record is flushed before the next PR is
		// fetched, so a kill loses at most the in-flight record.
		if err := o.store.Upsert(set, pr); err != nil {
			return err
		}
		res.Fetched++
		return nil
	})

	if walkErr != nil {
		res.Err = walkErr
		return res
	}

	res.Completed = true
	return res
}
