package filter

import (
	"reflect"
	"testing"

	"github.com/dshills/prdigest/internal/pr"
)

func record(names ...string) *pr.Record {
	files := make([]pr.FileChange, len(names))
	for i, n := range names {
		files[i] = pr.FileChange{Filename: n, Status: pr.StatusModified, Additions: 1, Deletions: 1}
	}
	return &pr.Record{
		Files:   files,
		Commits: []pr.Commit{{Message: "one"}},
		Reviews: []pr.Review{{Reviewer: "alice"}},
		Derived: pr.ComputeMetadata(files, []pr.Commit{{Message: "one"}}, []pr.Review{{Reviewer: "alice"}}),
	}
}

func fileNames(rec *pr.Record) []string {
	names := make([]string, len(rec.Files))
	for i, f := range rec.Files {
		names[i] = f.Filename
	}
	return names
}

func mustCompile(t *testing.T, maxFiles int, patterns ...string) Options {
	t.Helper()
	opts, err := Compile(maxFiles, patterns)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return opts
}

func TestApplyTruncatesBeforeExcluding(t *testing.T) {
	// Truncate-then-exclude: with maxFiles=2 the log file is still in
	// the window, so only a.txt survives. The reverse order would keep
	// c.txt as well.
	rec := record("a.txt", "b.log", "c.txt")
	opts := mustCompile(t, 2, `.*\.log$`)

	got := Apply(rec, opts)
	if want := []string{"a.txt"}; !reflect.DeepEqual(fileNames(got), want) {
		t.Errorf("files = %v, want %v", fileNames(got), want)
	}
}

func TestApplyNoConfig(t *testing.T) {
	rec := record("a.go", "b.go")
	got := Apply(rec, Options{})
	if !reflect.DeepEqual(fileNames(got), []string{"a.go", "b.go"}) {
		t.Errorf("files = %v", fileNames(got))
	}
}

func TestApplyExcludeOnly(t *testing.T) {
	rec := record("main.go", "main_test.go", "vendor/lib.go")
	opts := mustCompile(t, 0, `_test\.go$`, `^vendor/`)

	got := Apply(rec, opts)
	if want := []string{"main.go"}; !reflect.DeepEqual(fileNames(got), want) {
		t.Errorf("files = %v, want %v", fileNames(got), want)
	}
}

func TestApplyRecomputesDerived(t *testing.T) {
	rec := record("a.go", "b.go", "c.go", "d.go")
	opts := mustCompile(t, 2)

	got := Apply(rec, opts)
	if got.Derived.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", got.Derived.TotalFiles)
	}
	if got.Derived.Additions != 2 || got.Derived.Deletions != 2 {
		t.Errorf("additions/deletions = %d/%d, want 2/2", got.Derived.Additions, got.Derived.Deletions)
	}
	if !reflect.DeepEqual(got.Derived.ChangedFiles, []string{"a.go", "b.go"}) {
		t.Errorf("ChangedFiles = %v", got.Derived.ChangedFiles)
	}
	// Commit and review aggregates are untouched by file filtering.
	if got.Derived.TotalCommits != 1 || got.Derived.TotalReviews != 1 {
		t.Errorf("commit/review counts = %d/%d", got.Derived.TotalCommits, got.Derived.TotalReviews)
	}
}

func TestApplyIdempotent(t *testing.T) {
	rec := record("a.txt", "b.log", "c.txt", "d.log", "e.txt")
	opts := mustCompile(t, 4, `.*\.log$`)

	once := Apply(rec, opts)
	twice := Apply(once, opts)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	rec := record("a.go", "b.go", "c.go")
	before := fileNames(rec)
	beforeDerived := rec.Derived

	Apply(rec, mustCompile(t, 1, `b\.go`))

	if !reflect.DeepEqual(fileNames(rec), before) {
		t.Error("Apply modified the input file list")
	}
	if !reflect.DeepEqual(rec.Derived, beforeDerived) {
		t.Error("Apply modified the input derived metadata")
	}
}

func TestCompileRejectsBadPattern(t *testing.T) {
	if _, err := Compile(0, []string{`valid`, `[unclosed`}); err == nil {
		t.Error("Compile accepted an invalid pattern")
	}
}
