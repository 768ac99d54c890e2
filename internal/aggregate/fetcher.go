package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/prdigest/internal/pr"
)

// defaultConcurrency caps simultaneous in-flight content requests.
// Unbounded fan-out on large PRs risks rate-limit exhaustion.
const defaultConcurrency = 10

// fileContent pairs the before/after content of one changed file.
// A nil side means the file does not exist at that ref.
type fileContent struct {
	filename string
	base     *string
	head     *string
}

// fetchContents retrieves base and head content for every file through
// a pool bounded at a.concurrency. Results stay associated with their
// filename regardless of completion order. The first real failure
// fails the whole phase as content_fetch_failed; a file being absent
// at a ref is not a failure.
func (a *Aggregator) fetchContents(ctx context.Context, ref pr.Ref, files []pr.FileChange, baseSHA, headSHA string) ([]fileContent, error) {
	results := make([]fileContent, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, f := range files {
		i := i
		results[i].filename = f.Filename
		name := f.Filename

		g.Go(func() error {
			content, err := a.client.FileContent(gctx, ref, name, baseSHA)
			if err != nil {
				return pr.ContentFetchError(name, err)
			}
			results[i].base = content
			return nil
		})
		g.Go(func() error {
			content, err := a.client.FileContent(gctx, ref, name, headSHA)
			if err != nil {
				return pr.ContentFetchError(name, err)
			}
			results[i].head = content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
