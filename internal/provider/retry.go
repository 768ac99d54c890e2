package provider

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dshills/prdigest/internal/pr"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// do runs fn, retrying rate-limit and transient-network failures with
// exponential backoff plus jitter. A provider-supplied retry-after
// hint overrides the computed delay. Non-retryable failures and
// exhausted budgets propagate the last error unchanged in kind.
func (g *GitHub) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.baseDelay << (attempt - 1)
			if half := delay / 2; half > 0 {
				delay += time.Duration(rand.Int63n(int64(half)))
			}
			var pe *pr.Error
			if errors.As(lastErr, &pe) && pe.RetryAfter > 0 {
				delay = pe.RetryAfter
			}

			select {
			case <-ctx.Done():
				return pr.Wrap(pr.KindCancelled, ctx.Err(), "request cancelled")
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !pr.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
