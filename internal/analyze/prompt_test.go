package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/prdigest/internal/pr"
)

func testRecord() *pr.Record {
	files := []pr.FileChange{
		{Filename: "main.go", Status: pr.StatusModified, Additions: 2, Deletions: 1, Patch: "@@ -1 +1 @@\n-old\n+new"},
		{Filename: "logo.png", Status: pr.StatusAdded},
	}
	commits := []pr.Commit{{Message: "fix parser\n\nlonger body", Author: "Alice"}}
	reviews := []pr.Review{{Reviewer: "bob", State: "APPROVED"}}
	return &pr.Record{
		Ref: pr.Ref{Owner: "octocat", Repo: "hello", Number: 7},
		Metadata: pr.Metadata{
			Title: "Fix the parser", Author: "alice",
			BaseBranch: "main", HeadBranch: "fix-parser",
		},
		Files:   files,
		Commits: commits,
		Reviews: reviews,
		Derived: pr.ComputeMetadata(files, commits, reviews),
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testRecord())

	for _, want := range []string{
		`"summary"`,
		"octocat/hello#7",
		"Title: Fix the parser",
		"- fix parser (Alice)", // subject line only
		"--- main.go (modified, +2/-1) ---",
		"+new",
		"--- logo.png (added, +0/-0) ---",
		"(no textual diff available)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "longer body") {
		t.Error("prompt should only include commit subject lines")
	}
}

func TestBuildPromptRedactsSecrets(t *testing.T) {
	rec := testRecord()
	rec.Files[0].Patch = `+api_key = "abcdefghij1234567890ABCD"`

	prompt := BuildPrompt(rec)
	if strings.Contains(prompt, "abcdefghij1234567890ABCD") {
		t.Error("secret leaked into prompt")
	}
	if !strings.Contains(prompt, "[REDACTED]") {
		t.Error("expected redaction placeholder in prompt")
	}
}

func TestBuildPromptTruncatesLargePatches(t *testing.T) {
	rec := testRecord()
	rec.Files[0].Patch = strings.Repeat("+x\n", maxPromptPatchBytes)

	prompt := BuildPrompt(rec)
	if !strings.Contains(prompt, "... (truncated)") {
		t.Error("large patch was not truncated")
	}
}

func TestPlaceholderAnalyzer(t *testing.T) {
	f, err := Placeholder{}.Analyze(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if f.Summary == "" {
		t.Error("placeholder summary should not be empty")
	}
	if f.Security == nil || f.Quality == nil || f.Bugs == nil || f.Recommendations == nil {
		t.Error("placeholder lists must be non-nil so they serialize as empty arrays")
	}
	if len(f.Security)+len(f.Quality)+len(f.Bugs)+len(f.Recommendations) != 0 {
		t.Errorf("placeholder findings should be empty: %+v", f)
	}
}
