package analyze

import (
	"fmt"
	"strings"

	"github.com/dshills/prdigest/internal/pr"
	"github.com/dshills/prdigest/internal/redact"
)

const promptPreamble = `You are an expert code reviewer. Analyze the following pull request and respond with ONLY a JSON object of this exact shape:
{
  "summary": "One-paragraph overview of the change",
  "security": ["security issue", ...],
  "quality": ["code quality issue", ...],
  "bugs": ["potential bug", ...],
  "recommendations": ["actionable recommendation", ...]
}

Empty arrays are valid. No markdown, no explanation, just the JSON object.`

// maxPromptPatchBytes caps the per-file patch size embedded in the
// prompt so one giant file cannot crowd out the rest.
const maxPromptPatchBytes = 20000

// BuildPrompt renders the analysis prompt from a normalized record.
// Patches are redacted before inclusion.
func BuildPrompt(rec *pr.Record) string {
	var b strings.Builder

	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Pull request: %s\n", rec.Ref)
	fmt.Fprintf(&b, "Title: %s\n", rec.Metadata.Title)
	fmt.Fprintf(&b, "Author: %s\n", rec.Metadata.Author)
	fmt.Fprintf(&b, "Branches: %s <- %s\n", rec.Metadata.BaseBranch, rec.Metadata.HeadBranch)
	if rec.Metadata.Body != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", rec.Metadata.Body)
	}

	if len(rec.Commits) > 0 {
		b.WriteString("\nCommits:\n")
		for _, c := range rec.Commits {
			fmt.Fprintf(&b, "- %s (%s)\n", firstLine(c.Message), c.Author)
		}
	}

	fmt.Fprintf(&b, "\nChanged files (%d, +%d/-%d):\n",
		rec.Derived.TotalFiles, rec.Derived.Additions, rec.Derived.Deletions)
	for _, f := range rec.Files {
		fmt.Fprintf(&b, "\n--- %s (%s, +%d/-%d) ---\n", f.Filename, f.Status, f.Additions, f.Deletions)
		patch := f.Patch
		if patch == "" {
			b.WriteString("(no textual diff available)\n")
			continue
		}
		if len(patch) > maxPromptPatchBytes {
			patch = patch[:maxPromptPatchBytes] + "\n... (truncated)"
		}
		b.WriteString(redact.Secrets(patch))
		b.WriteString("\n")
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
