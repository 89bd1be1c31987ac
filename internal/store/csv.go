package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkazarin/pr-times/internal/record"
)

// Header is the stable CSV column set. Order matters: the file is an external
// interface, consumers address columns by these identifiers.
var Header = []string{
	"repo", "number", "title", "url", "author", "draft",
	"created_at", "closed_at", "merged_at",
	"additions", "deletions", "changed_files", "commits",
	"reviews_count", "first_review_at", "time_to_first_review_hours",
	"time_to_merge_hours", "open_time_hours",
	"comments_count", "comment_authors", "approvals_count", "approval_authors",
}

func readRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	raw, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	header := raw[0]
	rows := make([]map[string]string, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeRows(w io.Writer, records []record.PullRequest) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, pr := range records {
		if err := cw.Write(formatRow(pr)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatRow(pr record.PullRequest) []string {
	return []string{
		pr.Repo,
		strconv.Itoa(pr.Number),
		pr.Title,
		pr.URL,
		pr.Author,
		strconv.FormatBool(pr.Draft),
		pr.CreatedAt.UTC().Format(time.RFC3339),
		formatTime(pr.ClosedAt),
		formatTime(pr.MergedAt),
		strconv.Itoa(pr.Additions),
		strconv.Itoa(pr.Deletions),
		strconv.Itoa(pr.ChangedFiles),
		strconv.Itoa(pr.Commits),
		strconv.Itoa(pr.ReviewsCount),
		formatTime(pr.FirstReviewAt),
		formatFloat(pr.TimeToFirstReviewHours),
		formatFloat(pr.TimeToMergeHours),
		formatFloat(pr.OpenTimeHours),
		strconv.Itoa(pr.CommentsCount),
		formatCommentAuthors(pr.CommentAuthors),
		strconv.Itoa(pr.ApprovalsCount),
		strings.Join(pr.ApprovalAuthors, ","),
	}
}

func parseRow(row map[string]string) (record.PullRequest, error) {
	var pr record.PullRequest
	var err error

	pr.Repo = row["repo"]
	if pr.Repo == "" {
		return pr, fmt.Errorf("missing repo")
	}

	pr.Number, err = strconv.Atoi(row["number"])
	if err != nil {
		return pr, fmt.Errorf("invalid number %q", row["number"])
	}

	pr.Title = row["title"]
	pr.URL = row["url"]
	pr.Author = row["author"]
	pr.Draft = row["draft"] == "true"

	pr.CreatedAt, err = time.Parse(time.RFC3339, row["created_at"])
	if err != nil {
		return pr, fmt.Errorf("invalid created_at %q", row["created_at"])
	}
	pr.CreatedAt = pr.CreatedAt.UTC()

	if pr.ClosedAt, err = parseTime(row["closed_at"]); err != nil {
		return pr, fmt.Errorf("invalid closed_at %q", row["closed_at"])
	}
	if pr.MergedAt, err = parseTime(row["merged_at"]); err != nil {
		return pr, fmt.Errorf("invalid merged_at %q", row["merged_at"])
	}
	if pr.FirstReviewAt, err = parseTime(row["first_review_at"]); err != nil {
		return pr, fmt.Errorf("invalid first_review_at %q", row["first_review_at"])
	}

	pr.Additions = parseIntDefault(row["additions"])
	pr.Deletions = parseIntDefault(row["deletions"])
	pr.ChangedFiles = parseIntDefault(row["changed_files"])
	pr.Commits = parseIntDefault(row["commits"])
	pr.ReviewsCount = parseIntDefault(row["reviews_count"])
	pr.CommentsCount = parseIntDefault(row["comments_count"])
	pr.ApprovalsCount = parseIntDefault(row["approvals_count"])

	pr.TimeToFirstReviewHours = parseFloat(row["time_to_first_review_hours"])
	pr.TimeToMergeHours = parseFloat(row["time_to_merge_hours"])
	pr.OpenTimeHours = parseFloat(row["open_time_hours"])

	pr.CommentAuthors = parseCommentAuthors(row["comment_authors"])
	if v := row["approval_authors"]; v != "" {
		pr.ApprovalAuthors = strings.Split(v, ",")
	}

	return pr, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntDefault(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// formatCommentAuthors renders the per-author comment counts as
// "author:count,author:count" with authors sorted for stable output.
func formatCommentAuthors(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	authors := make([]string, 0, len(counts))
	for a := range counts {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		parts = append(parts, fmt.Sprintf("%s:%d", a, counts[a]))
	}
	return strings.Join(parts, ",")
}

func parseCommentAuthors(s string) map[string]int {
	if s == "" {
		return nil
	}
	counts := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		author, count, ok := strings.Cut(part, ":")
		if !ok || author == "" {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			continue
		}
		counts[author] = n
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
