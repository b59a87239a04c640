package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// sleepFunc is the sleep used between attempts (injectable for tests)
var sleepFunc = time.Sleep

// Executor wraps a single external call with bounded exponential-backoff
// retry. MaxRetries counts additional attempts after the first, so
// MaxRetries=3 allows up to 4 invocations.
type Executor struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// New creates an executor with the given bounds
func New(maxRetries int, baseDelay time.Duration) *Executor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &Executor{MaxRetries: maxRetries, BaseDelay: baseDelay}
}

// Do invokes op, retrying transient failures with exponential backoff and
// jitter. Non-retryable errors propagate immediately; after retries are
// exhausted the last error propagates.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= e.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := e.BaseDelay * (1 << uint(attempt-1))
			backoff += time.Duration(rand.Int63n(int64(e.BaseDelay)))
			sleepFunc(backoff)
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}

// retryableFragments are matched case-insensitively against error text.
// Covers rate limiting (429), overload (529), transient network failures,
// and 5xx server responses.
var retryableFragments = []string{
	"429",
	"rate limit",
	"rate_limit",
	"too many requests",
	"529",
	"overloaded",
	"overload",
	"connection reset",
	"connection refused",
	"timeout",
	"timed out",
	"500",
	"502",
	"503",
	"504",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
}

// IsRetryable classifies an error as transient or fatal. Context
// cancellation is never retried: a caller wanting cancellation cancels
// the in-flight call and the failure propagates immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
