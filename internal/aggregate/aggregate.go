package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/prdigest/internal/pr"
	"github.com/dshills/prdigest/internal/provider"
	"github.com/dshills/prdigest/internal/textdiff"
)

// Aggregator fetches and merges the full state of one pull request.
// Each aggregation run gets its own Aggregator; there is no cross-run
// shared state.
type Aggregator struct {
	client      provider.Client
	concurrency int
}

// New creates an Aggregator. concurrency caps simultaneous in-flight
// content requests; values <= 0 select the default.
func New(client provider.Client, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Aggregator{client: client, concurrency: concurrency}
}

// Fetch retrieves metadata, files, commits and reviews in parallel,
// fetches per-file content at the base and head refs, and returns the
// normalized record. Any failure fails the whole aggregation; no
// partial record is ever returned. Siblings still in flight when the
// first failure lands are discarded, not awaited.
func (a *Aggregator) Fetch(ctx context.Context, ref pr.Ref) (*pr.Record, error) {
	var (
		meta    *pr.Metadata
		files   []pr.FileChange
		commits []pr.Commit
		reviews []pr.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := a.client.Metadata(gctx, ref)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	g.Go(func() error {
		f, err := a.client.Files(gctx, ref)
		if err != nil {
			return err
		}
		files = f
		return nil
	})
	g.Go(func() error {
		c, err := a.client.Commits(gctx, ref)
		if err != nil {
			return err
		}
		commits = c
		return nil
	})
	g.Go(func() error {
		r, err := a.client.Reviews(gctx, ref)
		if err != nil {
			return err
		}
		reviews = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, a.classify(ctx, err)
	}

	contents, err := a.fetchContents(ctx, ref, files, meta.BaseSHA, meta.HeadSHA)
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	merged, err := mergeContents(files, contents)
	if err != nil {
		return nil, err
	}

	return &pr.Record{
		Ref:      ref,
		Metadata: *meta,
		Files:    merged,
		Commits:  commits,
		Reviews:  reviews,
		Derived:  pr.ComputeMetadata(merged, commits, reviews),
	}, nil
}

// classify maps a failure caused by caller cancellation onto the
// cancelled kind. Failures while the run context is still live keep
// their own classification.
func (a *Aggregator) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return pr.Wrap(pr.KindCancelled, ctx.Err(), "aggregation cancelled")
	}
	return err
}

// mergeContents joins fetched content into the file list by filename.
// Content for a filename not in the original list is a contract
// violation: filenames have a single source of truth.
func mergeContents(files []pr.FileChange, contents []fileContent) ([]pr.FileChange, error) {
	byName := make(map[string]int, len(files))
	for i, f := range files {
		byName[f.Filename] = i
	}

	merged := make([]pr.FileChange, len(files))
	copy(merged, files)

	for _, c := range contents {
		i, ok := byName[c.filename]
		if !ok {
			return nil, pr.Errorf(pr.KindUnknown, "content fetched for unknown file %q", c.filename)
		}
		merged[i].BaseContent = c.base
		merged[i].HeadContent = c.head
		if merged[i].Patch == "" {
			merged[i].Patch = textdiff.Unified(c.filename, c.base, c.head)
		}
	}
	return merged, nil
}
