package output

import (
	"fmt"
	"io"

	"github.com/dshills/prdigest/internal/analyze"
)

// MarkdownWriter outputs a fixed-template markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analyze.Report) error {
	rec := report.PR

	fmt.Fprintf(w, "# Pull Request Analysis: %s\n\n", rec.Metadata.Title)

	// Overview
	fmt.Fprintf(w, "## Overview\n\n")
	fmt.Fprintf(w, "- **Pull Request**: %s\n", rec.Ref)
	fmt.Fprintf(w, "- **Author**: %s\n", rec.Metadata.Author)
	fmt.Fprintf(w, "- **Base**: `%s` (%s)\n", rec.Metadata.BaseBranch, shortSHA(rec.Metadata.BaseSHA))
	fmt.Fprintf(w, "- **Head**: `%s` (%s)\n\n", rec.Metadata.HeadBranch, shortSHA(rec.Metadata.HeadSHA))

	// Statistics
	fmt.Fprintf(w, "## Statistics\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Files changed | %d |\n", rec.Derived.TotalFiles)
	fmt.Fprintf(w, "| Commits | %d |\n", rec.Derived.TotalCommits)
	fmt.Fprintf(w, "| Reviews | %d |\n", rec.Derived.TotalReviews)
	fmt.Fprintf(w, "| Additions | %d |\n", rec.Derived.Additions)
	fmt.Fprintf(w, "| Deletions | %d |\n\n", rec.Derived.Deletions)

	// Analysis findings
	if f := report.Findings; f != nil {
		fmt.Fprintf(w, "## Analysis\n\n")
		if f.Summary != "" {
			fmt.Fprintf(w, "%s\n\n", f.Summary)
		}
		writeFindingSection(w, "Security Issues", f.Security)
		writeFindingSection(w, "Code Quality", f.Quality)
		writeFindingSection(w, "Potential Bugs", f.Bugs)
		writeFindingSection(w, "Recommendations", f.Recommendations)
	}

	// Changed files
	fmt.Fprintf(w, "## Changed Files\n\n")
	for _, f := range rec.Files {
		fmt.Fprintf(w, "- `%s` (%s, +%d/-%d)\n", f.Filename, f.Status, f.Additions, f.Deletions)
	}
	fmt.Fprintln(w)

	// Reviewers
	fmt.Fprintf(w, "## Reviewers\n\n")
	for _, r := range rec.Derived.Reviewers {
		fmt.Fprintf(w, "- %s\n", r)
	}

	return nil
}

// writeFindingSection renders one findings list. An empty list still
// renders its heading, as an empty section.
func writeFindingSection(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", item)
	}
	if len(items) > 0 {
		fmt.Fprintln(w)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
