package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// RetryableError marks a failure worth another attempt. Registry clients
// wrap the transient server statuses (500, 502, 504) in it.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff bounds how often an index request is repeated.
type Backoff struct {
	Attempts int           // total attempts; values below 1 mean 1
	Delay    time.Duration // wait before the second attempt, doubled after each retry
	Logger   *log.Logger   // debug line per retry; nil is silent
}

// Do calls fn with the 1-based attempt number until it succeeds, returns
// an error that is not a [RetryableError], or the attempts are used up.
// The last error is returned, or ctx.Err() if ctx ends while waiting.
func (b Backoff) Do(ctx context.Context, what string, fn func(attempt int) error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		if b.Logger != nil {
			b.Logger.Debug("retrying", "request", what, "attempt", attempt+1, "of", attempts, "wait", delay, "reason", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
