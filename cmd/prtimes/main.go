// Package main provides the entry point for the PR acquisition pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkazarin/pr-times/internal/config"
	"github.com/mkazarin/pr-times/internal/fetch"
	"github.com/mkazarin/pr-times/internal/github"
	"github.com/mkazarin/pr-times/internal/report"
	"github.com/mkazarin/pr-times/internal/stats"
	"github.com/mkazarin/pr-times/internal/store"
	"github.com/mkazarin/pr-times/pkg/logger"
)

const dateLayout = "2006-01-02"

func main() {
	os.Exit(run())
}

func run() int {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	var (
		reposFlag   = flag.String("repos", "", "comma-separated owner/repo list (required)")
		sinceFlag   = flag.String("since", "", "only PRs created on or after this date (YYYY-MM-DD)")
		untilFlag   = flag.String("until", "", "only PRs created before this date (YYYY-MM-DD)")
		stateFlag   = flag.String("state", "all", "PR state filter: open, closed or all")
		outDirFlag  = flag.String("out-dir", "data", "directory for CSV record sets and the report")
		timeoutFlag = flag.Duration("timeout", 0, "per-request HTTP timeout (overrides FETCH_TIMEOUT)")
		retriesFlag = flag.Int("retries", 0, "attempts for transient failures (overrides FETCH_RETRIES)")
		sleepFlag   = flag.Duration("sleep", -1, "fixed delay between API calls (overrides FETCH_SLEEP)")
		forceFlag   = flag.Bool("force-full-refresh", false, "re-enrich every PR, ignoring stored records")
		skipFlag    = flag.Bool("skip-report", false, "acquire records without assembling the report")
	)
	flag.Parse()

	cfg := config.LoadFromEnv()
	if *timeoutFlag > 0 {
		cfg.Fetch.Timeout = *timeoutFlag
	}
	if *retriesFlag > 0 {
		cfg.Fetch.MaxRetries = *retriesFlag
	}
	if *sleepFlag >= 0 {
		cfg.Fetch.Sleep = *sleepFlag
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	repos, err := parseRepos(*reposFlag)
	if err != nil {
		log.Errorw("invalid -repos", "error", err)
		return 1
	}

	opts := fetch.Options{
		State:            *stateFlag,
		ForceFullRefresh: *forceFlag,
	}
	if opts.Since, err = parseDate(*sinceFlag); err != nil {
		log.Errorw("invalid -since", "error", err)
		return 1
	}
	if opts.Until, err = parseDate(*untilFlag); err != nil {
		log.Errorw("invalid -until", "error", err)
		return 1
	}
	switch opts.State {
	case "open", "closed", "all":
	default:
		log.Errorw("invalid -state, want open, closed or all", "state", opts.State)
		return 1
	}

	st, err := store.NewCSV(*outDirFlag, log)
	if err != nil {
		log.Errorw("failed to prepare output directory", "dir", *outDirFlag, "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := github.New(cfg.GitHub, cfg.Fetch, log)
	orchestrator := fetch.NewOrchestrator(client, st, log)

	log.Infow("starting acquisition",
		"repos", repos,
		"state", opts.State,
		"force_full_refresh", opts.ForceFullRefresh,
	)
	results := orchestrator.Run(ctx, repos, opts)

	exitCode := 0
	for _, res := range results {
		if res.NoProgress() {
			exitCode = 1
		}
	}

	if !*skipFlag {
		engine := stats.NewEngine(cfg.Stats, log)
		assembler := report.NewAssembler(engine, st, nil, log)
		artifact := assembler.Assemble(repos)
		if _, err := assembler.Write(artifact, *outDirFlag); err != nil {
			log.Errorw("failed to write report", "error", err)
			exitCode = 1
		}
	}

	return exitCode
}

// parseRepos splits and validates the owner/repo list.
func parseRepos(raw string) ([]string, error) {
	if raw == "" {
		return nil, fmt.Errorf("at least one owner/repo is required")
	}

	var repos []string
	for _, part := range strings.Split(raw, ",") {
		repo := strings.TrimSpace(part)
		if repo == "" {
			continue
		}
		if strings.Count(repo, "/") != 1 {
			return nil, fmt.Errorf("%q is not in owner/repo form", repo)
		}
		repos = append(repos, repo)
	}

	if len(repos) == 0 {
		return nil, fmt.Errorf("at least one owner/repo is required")
	}
	return repos, nil
}

// parseDate parses a YYYY-MM-DD flag into a UTC midnight instant.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a YYYY-MM-DD date", raw)
	}
	t = t.UTC()
	return &t, nil
}
