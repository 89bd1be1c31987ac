package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/config"
	"github.com/mkazarin/pr-times/internal/record"
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

func fPtr(f float64) *float64 {
	return &f
}

func newTestEngine(t *testing.T, minAuthorPRs int, now string) *Engine {
	t.Helper()
	e := NewEngine(config.StatsConfig{MinAuthorPRs: minAuthorPRs}, zap.NewNop().Sugar())
	e.now = func() time.Time { return ts(now) }
	return e
}

func reviewedPR(number int, author, created string, reviewHours float64) record.PullRequest {
	return record.PullRequest{
		Repo:                   "org/repo",
		Number:                 number,
		Author:                 author,
		CreatedAt:              ts(created),
		TimeToFirstReviewHours: fPtr(reviewHours),
	}
}

func TestEngine_MeanAndMedian(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 2),
		reviewedPR(2, "alice", "2025-06-02T00:00:00Z", 4),
		reviewedPR(3, "alice", "2025-06-03T00:00:00Z", 6),
	}

	report := e.Compute(records)["overall"]
	s := report.Statistics

	require.NotNil(t, s.ReviewHoursMean)
	assert.Equal(t, 4.0, *s.ReviewHoursMean)
	require.NotNil(t, s.ReviewHoursMedian)
	assert.Equal(t, 4.0, *s.ReviewHoursMedian)
}

func TestEngine_MedianEvenCount(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 1),
		reviewedPR(2, "alice", "2025-06-02T00:00:00Z", 3),
		reviewedPR(3, "alice", "2025-06-03T00:00:00Z", 5),
		reviewedPR(4, "alice", "2025-06-04T00:00:00Z", 11),
	}

	s := e.Compute(records)["overall"].Statistics
	require.NotNil(t, s.ReviewHoursMedian)
	assert.Equal(t, 4.0, *s.ReviewHoursMedian)
}

func TestEngine_TrendSlope(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	// Day 0 -> 2h, day 10 -> 12h: slope 1.0 hours/day.
	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 2),
		reviewedPR(2, "alice", "2025-06-11T00:00:00Z", 12),
	}

	s := e.Compute(records)["overall"].Statistics
	require.NotNil(t, s.ReviewTrendHoursPerDay)
	assert.InDelta(t, 1.0, *s.ReviewTrendHoursPerDay, 1e-9)
}

func TestEngine_TrendUndefinedBelowTwoPoints(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 2),
		{Repo: "org/repo", Number: 2, Author: "bob", CreatedAt: ts("2025-06-02T00:00:00Z")},
	}

	s := e.Compute(records)["overall"].Statistics
	assert.Nil(t, s.ReviewTrendHoursPerDay, "one defined point must leave the slope undefined, not zero")
	assert.Nil(t, s.MergeTrendHoursPerDay)
}

func TestEngine_NullMetricsExcludedNotZeroed(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 4),
		// No reviews: counts toward totals, never toward review means.
		{Repo: "org/repo", Number: 2, Author: "bob", CreatedAt: ts("2025-06-02T00:00:00Z")},
	}

	s := e.Compute(records)["overall"].Statistics
	assert.Equal(t, 2, s.Total)
	require.NotNil(t, s.ReviewHoursMean)
	assert.Equal(t, 4.0, *s.ReviewHoursMean)
}

func TestEngine_WindowPartitioning(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-28T00:00:00Z", 2),  // inside 7d
		reviewedPR(2, "alice", "2025-06-10T00:00:00Z", 4),  // inside 30d
		reviewedPR(3, "alice", "2025-04-15T00:00:00Z", 6),  // inside 90d
		reviewedPR(4, "alice", "2024-01-01T00:00:00Z", 20), // overall only
	}

	reports := e.Compute(records)
	assert.Equal(t, 1, reports["7d"].Statistics.Total)
	assert.Equal(t, 2, reports["30d"].Statistics.Total)
	assert.Equal(t, 3, reports["90d"].Statistics.Total)
	assert.Equal(t, 4, reports["overall"].Statistics.Total)
}

func TestEngine_DeveloperRollupThreshold(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	records := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 2),
		reviewedPR(2, "alice", "2025-06-02T00:00:00Z", 4),
		reviewedPR(3, "alice", "2025-06-03T00:00:00Z", 6),
		reviewedPR(4, "bob", "2025-06-04T00:00:00Z", 10),
	}

	devs := e.Compute(records)["overall"].Developers
	require.Contains(t, devs, "alice")
	assert.NotContains(t, devs, "bob", "single-PR authors are filtered out")

	alice := devs["alice"]
	assert.Equal(t, 3, alice.PRCount)
	require.NotNil(t, alice.ReviewHoursMean)
	assert.Equal(t, 4.0, *alice.ReviewHoursMean)
}

func TestEngine_PoolingDiffersFromAveragingMeans(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	// Repo A: one PR at 2h. Repo B: three PRs at 10h each.
	repoA := []record.PullRequest{
		reviewedPR(1, "alice", "2025-06-01T00:00:00Z", 2),
	}
	repoB := []record.PullRequest{
		reviewedPR(1, "bob", "2025-06-02T00:00:00Z", 10),
		reviewedPR(2, "bob", "2025-06-03T00:00:00Z", 10),
		reviewedPR(3, "bob", "2025-06-04T00:00:00Z", 10),
	}

	meanA := *e.Compute(repoA)["overall"].Statistics.ReviewHoursMean
	meanB := *e.Compute(repoB)["overall"].Statistics.ReviewHoursMean
	averageOfMeans := (meanA + meanB) / 2

	pooled := *e.Compute(append(repoA, repoB...))["overall"].Statistics.ReviewHoursMean

	assert.Equal(t, 8.0, pooled) // (2 + 10 + 10 + 10) / 4
	assert.NotEqual(t, averageOfMeans, pooled,
		"pooled aggregates must come from raw records, not averaged means")
}

// The three-PR repository scenario: #1 merged, #2 open, #3 closed unmerged.
func TestEngine_EndToEndScenario(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-10T00:00:00Z")

	records := []record.PullRequest{
		{
			Repo:                   "org/repo",
			Number:                 1,
			Author:                 "alice",
			CreatedAt:              ts("2025-06-01T00:00:00Z"),
			FirstReviewAt:          tsPtr("2025-06-01T02:00:00Z"),
			MergedAt:               tsPtr("2025-06-01T10:00:00Z"),
			ClosedAt:               tsPtr("2025-06-01T10:00:00Z"),
			TimeToFirstReviewHours: fPtr(2),
			TimeToMergeHours:       fPtr(10),
		},
		{
			Repo:      "org/repo",
			Number:    2,
			Author:    "bob",
			CreatedAt: ts("2025-06-02T00:00:00Z"),
		},
		{
			Repo:                   "org/repo",
			Number:                 3,
			Author:                 "carol",
			CreatedAt:              ts("2025-06-03T00:00:00Z"),
			FirstReviewAt:          tsPtr("2025-06-03T01:00:00Z"),
			ClosedAt:               tsPtr("2025-06-03T05:00:00Z"),
			TimeToFirstReviewHours: fPtr(1),
			OpenTimeHours:          fPtr(5),
		},
	}

	s := e.Compute(records)["overall"].Statistics
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Merged)
	assert.Equal(t, 1, s.ClosedNotMerged)
	assert.Equal(t, 1, s.Open)

	require.NotNil(t, s.ReviewHoursMean)
	assert.Equal(t, 1.5, *s.ReviewHoursMean)
	require.NotNil(t, s.MergeHoursMean)
	assert.Equal(t, 10.0, *s.MergeHoursMean)
	assert.Nil(t, s.MergeTrendHoursPerDay, "a single merged PR cannot define a trend")
}

func TestEngine_EmptyWindow(t *testing.T) {
	e := newTestEngine(t, 3, "2025-06-30T00:00:00Z")

	reports := e.Compute(nil)
	s := reports["overall"].Statistics
	assert.Equal(t, 0, s.Total)
	assert.Nil(t, s.ReviewHoursMean)
	assert.Nil(t, s.ReviewHoursMedian)
	assert.Nil(t, s.ReviewTrendHoursPerDay)
	assert.Empty(t, reports["overall"].Developers)
}

func TestWindow_Start(t *testing.T) {
	now := ts("2025-06-30T00:00:00Z")

	start, bounded := Window{Name: "7d", Days: 7}.Start(now)
	assert.True(t, bounded)
	assert.Equal(t, ts("2025-06-23T00:00:00Z"), start)

	_, bounded = Window{Name: "overall", Days: 0}.Start(now)
	assert.False(t, bounded)
}
