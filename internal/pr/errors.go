package pr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidReference   Kind = "invalid_reference"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindRateLimited        Kind = "rate_limited"
	KindTransientNetwork   Kind = "transient_network"
	KindContentFetchFailed Kind = "content_fetch_failed"
	KindCancelled          Kind = "cancelled"
	KindUnknown            Kind = "unknown"
)

// Error is a classified pipeline error. Filename is set only for
// content_fetch_failed; RetryAfter only when the provider supplied a
// throttling hint.
type Error struct {
	Kind       Kind
	Message    string
	Filename   string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf creates a classified error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// ContentFetchError wraps a per-file content failure. The whole fetch
// phase fails with this error; there is no partial-success mode.
func ContentFetchError(filename string, err error) *Error {
	return &Error{
		Kind:     KindContentFetchFailed,
		Message:  fmt.Sprintf("fetching content for %s", filename),
		Filename: filename,
		Err:      err,
	}
}

// KindOf returns the classification of err, walking wrapped causes.
// Bare context cancellation maps to cancelled; anything else
// unclassified is unknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindUnknown
}

// IsRetryable reports whether the error class permits a retry with
// backoff. Only provider throttling and transient network failures
// qualify.
func IsRetryable(err error) bool {
	k := KindOf(err)
	return k == KindRateLimited || k == KindTransientNetwork
}
