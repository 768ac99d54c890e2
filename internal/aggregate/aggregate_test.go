package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dshills/prdigest/internal/pr"
)

func strptr(s string) *string { return &s }

// fakeClient is an instrumented provider.Client for aggregation tests.
// contents maps sha -> path -> content; a missing path means the file
// is absent at that ref.
type fakeClient struct {
	meta    pr.Metadata
	files   []pr.FileChange
	commits []pr.Commit
	reviews []pr.Review

	metaErr    error
	filesErr   error
	commitsErr error
	reviewsErr error

	contents   map[string]map[string]*string
	contentErr map[string]error

	delay time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
}

func (f *fakeClient) Metadata(ctx context.Context, ref pr.Ref) (*pr.Metadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	m := f.meta
	return &m, nil
}

func (f *fakeClient) Files(ctx context.Context, ref pr.Ref) ([]pr.FileChange, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files, nil
}

func (f *fakeClient) Commits(ctx context.Context, ref pr.Ref) ([]pr.Commit, error) {
	if f.commitsErr != nil {
		return nil, f.commitsErr
	}
	return f.commits, nil
}

func (f *fakeClient) Reviews(ctx context.Context, ref pr.Ref) ([]pr.Review, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews, nil
}

func (f *fakeClient) FileContent(ctx context.Context, ref pr.Ref, path, sha string) (*string, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.contentErr[path]; ok {
		return nil, err
	}
	atRef, ok := f.contents[sha]
	if !ok {
		return nil, nil
	}
	return atRef[path], nil
}

func (f *fakeClient) peakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func baseFake() *fakeClient {
	return &fakeClient{
		meta: pr.Metadata{
			Title: "Add feature", Author: "alice",
			BaseBranch: "main", HeadBranch: "feature",
			BaseSHA: "base-sha", HeadSHA: "head-sha",
		},
		files: []pr.FileChange{
			{Filename: "a.go", Status: pr.StatusModified, Additions: 2, Deletions: 1, Patch: "@@ provider patch @@"},
			{Filename: "b.go", Status: pr.StatusAdded, Additions: 5},
			{Filename: "c.go", Status: pr.StatusRemoved, Deletions: 4},
		},
		commits: []pr.Commit{{Message: "first", Author: "Alice"}, {Message: "second", Author: "Bob"}},
		reviews: []pr.Review{
			{Reviewer: "bob", State: "APPROVED"},
			{Reviewer: "carol", State: "COMMENTED"},
			{Reviewer: "bob", State: "COMMENTED"},
		},
		contents: map[string]map[string]*string{
			"base-sha": {
				"a.go": strptr("old a\n"),
				"c.go": strptr("old c\n"),
			},
			"head-sha": {
				"a.go": strptr("new a\n"),
				"b.go": strptr("new b\n"),
			},
		},
	}
}

var testRef = pr.Ref{Owner: "octocat", Repo: "hello", Number: 42}

func TestFetch(t *testing.T) {
	client := baseFake()
	rec, err := New(client, 0).Fetch(context.Background(), testRef)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if rec.Metadata.Title != "Add feature" || rec.Metadata.HeadSHA != "head-sha" {
		t.Errorf("metadata = %+v", rec.Metadata)
	}

	if len(rec.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(rec.Files))
	}
	a, b, c := rec.Files[0], rec.Files[1], rec.Files[2]
	if a.BaseContent == nil || *a.BaseContent != "old a\n" || a.HeadContent == nil || *a.HeadContent != "new a\n" {
		t.Errorf("a.go contents = %v / %v", a.BaseContent, a.HeadContent)
	}
	if a.Patch != "@@ provider patch @@" {
		t.Errorf("provider patch was overwritten: %q", a.Patch)
	}
	if b.BaseContent != nil {
		t.Errorf("added file should have nil base content, got %q", *b.BaseContent)
	}
	if b.Patch == "" {
		t.Error("missing patch should be synthesized from contents")
	}
	if c.HeadContent != nil {
		t.Errorf("removed file should have nil head content, got %q", *c.HeadContent)
	}

	// Derived metadata reflects the merged lists.
	if rec.Derived.TotalFiles != len(rec.Files) {
		t.Errorf("TotalFiles = %d, want %d", rec.Derived.TotalFiles, len(rec.Files))
	}
	if rec.Derived.Additions != 7 || rec.Derived.Deletions != 5 {
		t.Errorf("additions/deletions = %d/%d, want 7/5", rec.Derived.Additions, rec.Derived.Deletions)
	}
	if rec.Derived.TotalCommits != 2 || rec.Derived.TotalReviews != 3 {
		t.Errorf("commit/review counts = %d/%d", rec.Derived.TotalCommits, rec.Derived.TotalReviews)
	}
	if len(rec.Derived.Reviewers) != 2 {
		t.Errorf("Reviewers = %v, want 2 distinct", rec.Derived.Reviewers)
	}
}

func TestFetchTopLevelFailureFailsWhole(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeClient)
		want  pr.Kind
	}{
		{name: "metadata", setup: func(f *fakeClient) { f.metaErr = pr.Errorf(pr.KindNotFound, "no such PR") }, want: pr.KindNotFound},
		{name: "files", setup: func(f *fakeClient) { f.filesErr = pr.Errorf(pr.KindUnauthorized, "bad token") }, want: pr.KindUnauthorized},
		{name: "commits", setup: func(f *fakeClient) { f.commitsErr = pr.Errorf(pr.KindRateLimited, "throttled") }, want: pr.KindRateLimited},
		{name: "reviews", setup: func(f *fakeClient) { f.reviewsErr = pr.Errorf(pr.KindUnknown, "boom") }, want: pr.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := baseFake()
			tt.setup(client)

			rec, err := New(client, 0).Fetch(context.Background(), testRef)
			if rec != nil {
				t.Error("no partial record may be produced on failure")
			}
			if pr.KindOf(err) != tt.want {
				t.Errorf("KindOf = %q, want %q", pr.KindOf(err), tt.want)
			}
		})
	}
}

func TestFetchContentFailure(t *testing.T) {
	client := baseFake()
	client.contentErr = map[string]error{"b.go": pr.Errorf(pr.KindUnauthorized, "bad token")}

	rec, err := New(client, 0).Fetch(context.Background(), testRef)
	if rec != nil {
		t.Error("no partial record may be produced on content failure")
	}
	if pr.KindOf(err) != pr.KindContentFetchFailed {
		t.Fatalf("KindOf = %q, want %q", pr.KindOf(err), pr.KindContentFetchFailed)
	}
	var pe *pr.Error
	if !errors.As(err, &pe) || pe.Filename != "b.go" {
		t.Errorf("Filename = %v, want b.go", pe)
	}
}

func TestFetchConcurrencyCap(t *testing.T) {
	const limit = 4
	client := baseFake()
	client.delay = 5 * time.Millisecond
	client.files = nil
	for i := 0; i < 30; i++ {
		client.files = append(client.files, pr.FileChange{Filename: fmt.Sprintf("file%02d.go", i), Status: pr.StatusModified})
	}

	if _, err := New(client, limit).Fetch(context.Background(), testRef); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if peak := client.peakConcurrency(); peak > limit {
		t.Errorf("peak in-flight requests = %d, want <= %d", peak, limit)
	}
}

func TestFetchCancelled(t *testing.T) {
	client := baseFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := New(client, 0).Fetch(ctx, testRef)
	if rec != nil {
		t.Error("no partial record may be produced after cancellation")
	}
	if pr.KindOf(err) != pr.KindCancelled {
		t.Errorf("KindOf = %q, want %q (err: %v)", pr.KindOf(err), pr.KindCancelled, err)
	}
}

func TestMergeContentsUnknownFilename(t *testing.T) {
	files := []pr.FileChange{{Filename: "a.go"}}
	contents := []fileContent{{filename: "ghost.go"}}

	_, err := mergeContents(files, contents)
	if pr.KindOf(err) != pr.KindUnknown {
		t.Errorf("KindOf = %q, want %q", pr.KindOf(err), pr.KindUnknown)
	}
}

