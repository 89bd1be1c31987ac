// Package stats computes time-windowed aggregate and per-developer
// statistics over pull request records, including trend-slope estimation.
package stats

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/config"
	"github.com/mkazarin/pr-times/internal/record"
)

// WindowStatistics are the aggregate numbers for one time window. Mean,
// median and trend fields are nil when no record in the window has the
// metric defined; undefined values are excluded, never counted as zero.
type WindowStatistics struct {
	Total           int `json:"total"`
	Merged          int `json:"merged"`
	ClosedNotMerged int `json:"closed_not_merged"`
	Open            int `json:"open"`

	ReviewHoursMean   *float64 `json:"review_hours_mean,omitempty"`
	ReviewHoursMedian *float64 `json:"review_hours_median,omitempty"`
	MergeHoursMean    *float64 `json:"merge_hours_mean,omitempty"`
	MergeHoursMedian  *float64 `json:"merge_hours_median,omitempty"`

	// Trend slopes are ordinary least-squares fits of metric hours against
	// PR creation date, in hours per day. Undefined below 2 points.
	ReviewTrendHoursPerDay *float64 `json:"review_trend_hours_per_day,omitempty"`
	MergeTrendHoursPerDay  *float64 `json:"merge_trend_hours_per_day,omitempty"`
}

// DeveloperStatistics are per-author numbers within one window.
type DeveloperStatistics struct {
	PRCount         int      `json:"pr_count"`
	ReviewHoursMean *float64 `json:"review_hours_mean,omitempty"`
	MergeHoursMean  *float64 `json:"merge_hours_mean,omitempty"`
}

// WindowReport pairs the aggregate statistics of one window with its
// per-developer rollup.
type WindowReport struct {
	Statistics WindowStatistics               `json:"statistics"`
	Developers map[string]DeveloperStatistics `json:"developers"`
}

// Engine computes statistics over record sets.
type Engine struct {
	minAuthorPRs int
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// NewEngine creates a statistics engine.
func NewEngine(cfg config.StatsConfig, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		minAuthorPRs: cfg.MinAuthorPRs,
		logger:       logger,
		now:          time.Now,
	}
}

// Compute produces a report for every named window over the given records.
// Records may be pooled across repositories: aggregates are always computed
// from raw records, never by combining per-repository means.
func (e *Engine) Compute(records []record.PullRequest) map[string]WindowReport {
	now := e.now()

	out := make(map[string]WindowReport, len(Windows))
	for _, w := range Windows {
		out[w.Name] = e.computeWindow(records, w, now)
	}
	return out
}

func (e *Engine) computeWindow(records []record.PullRequest, w Window, now time.Time) WindowReport {
	var inWindow []record.PullRequest
	for _, pr := range records {
		if w.Contains(pr.CreatedAt, now) {
			inWindow = append(inWindow, pr)
		}
	}

	var s WindowStatistics
	s.Total = len(inWindow)
	for _, pr := range inWindow {
		switch {
		case pr.MergedAt != nil:
			s.Merged++
		case pr.ClosedAt != nil:
			s.ClosedNotMerged++
		default:
			s.Open++
		}
	}

	reviewHours := definedValues(inWindow, reviewMetric)
	mergeHours := definedValues(inWindow, mergeMetric)

	s.ReviewHoursMean = mean(reviewHours)
	s.ReviewHoursMedian = median(reviewHours)
	s.MergeHoursMean = mean(mergeHours)
	s.MergeHoursMedian = median(mergeHours)

	origin := trendOrigin(inWindow, w, now)
	s.ReviewTrendHoursPerDay = trendSlope(inWindow, reviewMetric, origin)
	s.MergeTrendHoursPerDay = trendSlope(inWindow, mergeMetric, origin)

	return WindowReport{
		Statistics: s,
		Developers: e.developers(inWindow),
	}
}

func (e *Engine) developers(records []record.PullRequest) map[string]DeveloperStatistics {
	byAuthor := make(map[string][]record.PullRequest)
	for _, pr := range records {
		if pr.Author == "" {
			continue
		}
		byAuthor[pr.Author] = append(byAuthor[pr.Author], pr)
	}

	out := make(map[string]DeveloperStatistics)
	for author, prs := range byAuthor {
		if len(prs) < e.minAuthorPRs {
			continue
		}
		out[author] = DeveloperStatistics{
			PRCount:         len(prs),
			ReviewHoursMean: mean(definedValues(prs, reviewMetric)),
			MergeHoursMean:  mean(definedValues(prs, mergeMetric)),
		}
	}
	return out
}

func reviewMetric(pr record.PullRequest) *float64 {
	return pr.TimeToFirstReviewHours
}

func mergeMetric(pr record.PullRequest) *float64 {
	return pr.TimeToMergeHours
}

func definedValues(records []record.PullRequest, metric func(record.PullRequest) *float64) []float64 {
	var out []float64
	for _, pr := range records {
		if v := metric(pr); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// trendOrigin picks the x-axis origin for slope fitting: the window start
// for bounded windows, the earliest creation date otherwise. The origin only
// shifts the intercept; the slope is origin-independent.
func trendOrigin(records []record.PullRequest, w Window, now time.Time) time.Time {
	if start, bounded := w.Start(now); bounded {
		return start
	}
	var earliest time.Time
	for _, pr := range records {
		if earliest.IsZero() || pr.CreatedAt.Before(earliest) {
			earliest = pr.CreatedAt
		}
	}
	return earliest
}

// trendSlope fits metric hours against creation date in days since origin
// with ordinary least squares. Fewer than 2 defined points, or points with
// no spread in x, leave the slope undefined.
func trendSlope(records []record.PullRequest, metric func(record.PullRequest) *float64, origin time.Time) *float64 {
	var xs, ys []float64
	for _, pr := range records {
		v := metric(pr)
		if v == nil {
			continue
		}
		xs = append(xs, pr.CreatedAt.Sub(origin).Hours()/24)
		ys = append(ys, *v)
	}

	n := float64(len(xs))
	if n < 2 {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}

	slope := (n*sumXY - sumX*sumY) / denom
	return &slope
}
