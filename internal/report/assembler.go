// Package report assembles per-repository statistics into the single JSON
// artifact consumed by the reporting front end.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/record"
	"github.com/mkazarin/pr-times/internal/stats"
	"github.com/mkazarin/pr-times/internal/store"
)

// CombinedKey identifies the synthetic entry aggregating all repositories.
const CombinedKey = "combined"

// FileName is the artifact file name inside the output directory.
const FileName = "report.json"

// RepositoryReport maps window name to that window's report.
type RepositoryReport map[string]stats.WindowReport

// Artifact is the externally emitted report structure. Raw per-repository
// record arrays are embedded so the front end can re-filter (for example
// excluding authors) without re-contacting the platform.
type Artifact struct {
	GeneratedAt  time.Time                          `json:"generated_at"`
	Windows      []string                           `json:"windows"`
	Repositories map[string]RepositoryReport        `json:"repositories"`
	Combined     RepositoryReport                   `json:"combined"`
	Records      map[string][]record.PullRequest    `json:"records"`
	Charts       map[string]string                  `json:"charts,omitempty"`
}

// ChartRenderer renders chart assets for an artifact into a directory and
// returns chart name to file name. Actual chart drawing belongs to the
// front-end collaborator; NoopRenderer is used when none is configured.
type ChartRenderer interface {
	Render(artifact *Artifact, dir string) (map[string]string, error)
}

// NoopRenderer renders nothing.
type NoopRenderer struct{}

// Render implements ChartRenderer.
func (NoopRenderer) Render(*Artifact, string) (map[string]string, error) {
	return nil, nil
}

// Assembler builds and writes report artifacts.
type Assembler struct {
	engine   *stats.Engine
	store    store.Store
	renderer ChartRenderer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewAssembler creates an assembler. A nil renderer disables charts.
func NewAssembler(engine *stats.Engine, st store.Store, renderer ChartRenderer, logger *zap.SugaredLogger) *Assembler {
	if renderer == nil {
		renderer = NoopRenderer{}
	}
	return &Assembler{
		engine:   engine,
		store:    st,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// Assemble loads every repository's record set and computes per-repository
// and combined statistics. The combined entry pools raw records across
// repositories and re-runs the engine: summing or averaging per-repository
// means would not be a valid aggregate. Repositories whose record set fails
// to load are reported without statistics rather than failing the artifact.
func (a *Assembler) Assemble(repos []string) *Artifact {
	artifact := &Artifact{
		GeneratedAt:  a.now().UTC(),
		Windows:      stats.WindowNames(),
		Repositories: make(map[string]RepositoryReport, len(repos)),
		Records:      make(map[string][]record.PullRequest, len(repos)),
	}

	var pooled []record.PullRequest
	for _, repo := range repos {
		set, err := a.store.Load(repo)
		if err != nil {
			a.logger.Warnw("record set unavailable, omitting repository from report",
				"repo", repo, "error", err)
			continue
		}

		records := set.Records()
		artifact.Repositories[repo] = a.engine.Compute(records)
		artifact.Records[repo] = records
		pooled = append(pooled, records...)
	}

	artifact.Combined = a.engine.Compute(pooled)
	return artifact
}

// Write renders configured charts and writes the artifact JSON into dir,
// recording resulting chart file names in the artifact first.
func (a *Assembler) Write(artifact *Artifact, dir string) (string, error) {
	charts, err := a.renderer.Render(artifact, dir)
	if err != nil {
		a.logger.Warnw("chart rendering failed, emitting report without charts", "error", err)
	} else if len(charts) > 0 {
		artifact.Charts = charts
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report artifact: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}

	a.logger.Infow("report artifact written",
		"path", path,
		"repositories", len(artifact.Repositories),
		"charts", len(artifact.Charts),
	)
	return path, nil
}
