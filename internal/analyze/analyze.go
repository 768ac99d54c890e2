package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/prdigest/internal/pr"
)

// Findings is the structured result of the analysis step.
type Findings struct {
	Summary         string   `json:"summary"`
	Security        []string `json:"security"`
	Quality         []string `json:"quality"`
	Bugs            []string `json:"bugs"`
	Recommendations []string `json:"recommendations"`
}

// Analyzer produces findings for a normalized pull request record. The
// record handed in includes file content; ownership stays with the
// caller.
type Analyzer interface {
	Analyze(ctx context.Context, rec *pr.Record) (*Findings, error)
}

// Placeholder is the Analyzer used when no analysis backend is
// configured. It returns empty findings with a descriptive summary so
// report generation still works end to end.
type Placeholder struct{}

func (Placeholder) Analyze(_ context.Context, rec *pr.Record) (*Findings, error) {
	return &Findings{
		Summary: fmt.Sprintf(
			"Automated analysis is not configured. %d files changed across %d commits (+%d/-%d).",
			rec.Derived.TotalFiles, rec.Derived.TotalCommits, rec.Derived.Additions, rec.Derived.Deletions,
		),
		Security:        []string{},
		Quality:         []string{},
		Bugs:            []string{},
		Recommendations: []string{},
	}, nil
}

// Report is the top-level structure handed to the report writers.
type Report struct {
	Tool        string     `json:"tool"`
	Version     string     `json:"version"`
	GeneratedAt time.Time  `json:"generatedAt"`
	PR          *pr.Record `json:"pullRequest"`
	Findings    *Findings  `json:"findings,omitempty"`
}

// NewReport assembles a report from a record and its findings.
func NewReport(version string, rec *pr.Record, findings *Findings) *Report {
	return &Report{
		Tool:        "prdigest",
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		PR:          rec,
		Findings:    findings,
	}
}
