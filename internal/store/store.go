// Package store persists per-repository record sets as flat CSV files.
// The column layout is a stable external contract consumed by the reporting
// front end, so it never changes shape between runs.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/record"
)

// Store defines durable record set persistence.
type Store interface {
	// Load reads the record set for a repository. A missing file yields an
	// empty set, not an error.
	Load(repo string) (*record.Set, error)

	// Upsert merges one record into the set and immediately persists the
	// whole set. This is the durability point: a killed process loses at
	// most the in-flight record.
	Upsert(set *record.Set, pr record.PullRequest) error

	// Path returns the file path backing a repository's record set.
	Path(repo string) string
}

// CSV is the flat-file Store implementation, one CSV per repository.
type CSV struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewCSV creates a CSV store rooted at dir, creating it if needed.
func NewCSV(dir string, logger *zap.SugaredLogger) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &CSV{dir: dir, logger: logger}, nil
}

// Path returns the CSV file path for a repository.
func (s *CSV) Path(repo string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(repo)
	return filepath.Join(s.dir, safe+".csv")
}

// Load reads the record set for a repository.
func (s *CSV) Load(repo string) (*record.Set, error) {
	set := record.NewSet(repo)

	path := s.Path(repo)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("open record set %s: %w", path, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("read record set %s: %w", path, err)
	}

	for i, row := range rows {
		pr, err := parseRow(row)
		if err != nil {
			s.logger.Warnw("skipping malformed record row",
				"repo", repo,
				"row", i+2, // 1-based, after header
				"error", err,
			)
			continue
		}
		if pr.Repo != repo {
			// Rows for other repositories are ignored, not merged.
			continue
		}
		if _, err := set.Upsert(pr); err != nil {
			s.logger.Warnw("skipping invalid record row", "repo", repo, "error", err)
		}
	}

	return set, nil
}

// Upsert merges a record into the set and rewrites the repository file.
// The rewrite goes through a temp file and rename so a crash mid-write never
// corrupts previously persisted records.
func (s *CSV) Upsert(set *record.Set, pr record.PullRequest) error {
	applied, err := set.Upsert(pr)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}
	return s.save(set)
}

func (s *CSV) save(set *record.Set) error {
	path := s.Path(set.Repo())

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record set: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeRows(tmp, set.Records()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record set %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flush record set %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace record set %s: %w", path, err)
	}

	return nil
}
