package provider

import (
	"context"

	"github.com/dshills/prdigest/internal/pr"
)

// Client is the capability set a hosting provider must supply. All
// operations fail with a classified *pr.Error.
type Client interface {
	// Metadata fetches the PR-level fields (title, author, branch refs).
	Metadata(ctx context.Context, ref pr.Ref) (*pr.Metadata, error)

	// Files lists the changed files in provider order.
	Files(ctx context.Context, ref pr.Ref) ([]pr.FileChange, error)

	// Commits lists the PR commits in provider (chronological) order.
	Commits(ctx context.Context, ref pr.Ref) ([]pr.Commit, error)

	// Reviews lists the submitted reviews.
	Reviews(ctx context.Context, ref pr.Ref) ([]pr.Review, error)

	// FileContent fetches the content of path at the given commit SHA.
	// A nil result with a nil error means the file does not exist at
	// that ref; that is a successful outcome, not a failure.
	FileContent(ctx context.Context, ref pr.Ref, path, sha string) (*string, error)
}
