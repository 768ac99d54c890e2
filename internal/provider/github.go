package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/dshills/prdigest/internal/pr"
)

const defaultHTTPTimeout = 30 * time.Second

// GitHub implements Client against the GitHub REST API.
type GitHub struct {
	client      *github.Client
	maxAttempts int
	baseDelay   time.Duration
}

type githubOptions struct {
	baseURL     string
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
}

// Option configures a GitHub client.
type Option func(*githubOptions)

// WithBaseURL points the client at a different API endpoint, e.g. a
// GitHub Enterprise instance or a test server.
func WithBaseURL(raw string) Option {
	return func(o *githubOptions) { o.baseURL = raw }
}

// WithRetry overrides the retry budget for retryable failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *githubOptions) {
		o.maxAttempts = maxAttempts
		o.baseDelay = baseDelay
	}
}

// WithTimeout sets the per-call HTTP timeout. Expiry surfaces as a
// transient_network failure, retryable by policy.
func WithTimeout(d time.Duration) Option {
	return func(o *githubOptions) { o.timeout = d }
}

// NewGitHub creates a GitHub provider client. The token must already
// be valid; no auth flow is performed here.
func NewGitHub(token string, opts ...Option) *GitHub {
	o := githubOptions{
		timeout:     defaultHTTPTimeout,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = defaultHTTPTimeout
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = defaultMaxAttempts
	}
	if o.baseDelay <= 0 {
		o.baseDelay = defaultBaseDelay
	}

	gh := github.NewClient(&http.Client{Timeout: o.timeout})
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if o.baseURL != "" {
		raw := o.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if u, err := url.Parse(raw); err == nil {
			gh.BaseURL = u
		}
	}

	return &GitHub{
		client:      gh,
		maxAttempts: o.maxAttempts,
		baseDelay:   o.baseDelay,
	}
}

// Metadata fetches the PR-level fields.
func (g *GitHub) Metadata(ctx context.Context, ref pr.Ref) (*pr.Metadata, error) {
	var p *github.PullRequest
	err := g.do(ctx, func() error {
		var err error
		p, _, err = g.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}

	return &pr.Metadata{
		Title:      p.GetTitle(),
		Body:       p.GetBody(),
		Author:     p.GetUser().GetLogin(),
		BaseBranch: p.GetBase().GetRef(),
		HeadBranch: p.GetHead().GetRef(),
		BaseSHA:    p.GetBase().GetSHA(),
		HeadSHA:    p.GetHead().GetSHA(),
	}, nil
}

// Files lists the changed files, following pagination.
func (g *GitHub) Files(ctx context.Context, ref pr.Ref) ([]pr.FileChange, error) {
	var out []pr.FileChange
	opts := &github.ListOptions{PerPage: 100}

	for {
		var (
			files []*github.CommitFile
			resp  *github.Response
		)
		err := g.do(ctx, func() error {
			var err error
			files, resp, err = g.client.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return mapError(err)
		})
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			out = append(out, pr.FileChange{
				Filename:  f.GetFilename(),
				Status:    pr.FileStatus(f.GetStatus()),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// Commits lists the PR commits, following pagination.
func (g *GitHub) Commits(ctx context.Context, ref pr.Ref) ([]pr.Commit, error) {
	var out []pr.Commit
	opts := &github.ListOptions{PerPage: 100}

	for {
		var (
			commits []*github.RepositoryCommit
			resp    *github.Response
		)
		err := g.do(ctx, func() error {
			var err error
			commits, resp, err = g.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return mapError(err)
		})
		if err != nil {
			return nil, err
		}

		for _, c := range commits {
			out = append(out, pr.Commit{
				Message:    c.GetCommit().GetMessage(),
				Author:     c.GetCommit().GetAuthor().GetName(),
				AuthoredAt: c.GetCommit().GetAuthor().GetDate().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// Reviews lists the submitted reviews, following pagination.
func (g *GitHub) Reviews(ctx context.Context, ref pr.Ref) ([]pr.Review, error) {
	var out []pr.Review
	opts := &github.ListOptions{PerPage: 100}

	for {
		var (
			reviews []*github.PullRequestReview
			resp    *github.Response
		)
		err := g.do(ctx, func() error {
			var err error
			reviews, resp, err = g.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return mapError(err)
		})
		if err != nil {
			return nil, err
		}

		for _, r := range reviews {
			out = append(out, pr.Review{
				Reviewer: r.GetUser().GetLogin(),
				State:    r.GetState(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// FileContent fetches file content at a commit SHA. A 404 from the
// contents endpoint means the file does not exist at that ref, which
// is a successful none result: new and deleted files are expected to
// be one-sided.
func (g *GitHub) FileContent(ctx context.Context, ref pr.Ref, path, sha string) (*string, error) {
	var fc *github.RepositoryContent
	err := g.do(ctx, func() error {
		var err error
		fc, _, _, err = g.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, &github.RepositoryContentGetOptions{Ref: sha})
		return mapError(err)
	})
	if err != nil {
		if pr.KindOf(err) == pr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}

	if fc == nil {
		return nil, pr.Errorf(pr.KindUnknown, "%s is not a file at %s", path, sha)
	}
	content, err := fc.GetContent()
	if err != nil {
		return nil, pr.Wrap(pr.KindUnknown, err, "decoding content of %s at %s", path, sha)
	}
	return &content, nil
}

// mapError classifies a go-github error into the pipeline taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		retryAfter := time.Until(rle.Rate.Reset.Time)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &pr.Error{Kind: pr.KindRateLimited, Message: "rate limited", RetryAfter: retryAfter, Err: err}
	}

	var arle *github.AbuseRateLimitError
	if errors.As(err, &arle) {
		var retryAfter time.Duration
		if arle.RetryAfter != nil {
			retryAfter = *arle.RetryAfter
		}
		return &pr.Error{Kind: pr.KindRateLimited, Message: "secondary rate limit", RetryAfter: retryAfter, Err: err}
	}

	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		switch code := ger.Response.StatusCode; {
		case code == http.StatusNotFound:
			return pr.Wrap(pr.KindNotFound, err, "resource not found")
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return pr.Wrap(pr.KindUnauthorized, err, "authentication failed")
		case code == http.StatusTooManyRequests:
			return &pr.Error{Kind: pr.KindRateLimited, Message: "rate limited", Err: err}
		case code >= 500:
			return pr.Wrap(pr.KindTransientNetwork, err, "server error")
		default:
			return pr.Wrap(pr.KindUnknown, err, "unexpected API error")
		}
	}

	// Transport-level failures. Timeouts and connection errors are
	// retryable; they surface as *url.Error from the HTTP client.
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return pr.Wrap(pr.KindTransientNetwork, err, "request timed out")
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return pr.Wrap(pr.KindTransientNetwork, err, "network error")
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pr.Wrap(pr.KindCancelled, err, "request cancelled")
	}

	return pr.Wrap(pr.KindUnknown, err, "unexpected error")
}
