package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Retrier runs a call up to Attempts times, doubling the wait after each
// failure.
type Retrier struct {
	Attempts int
	Backoff  time.Duration
	Logger   *slog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. attempts below 1 means a single attempt.
func NewRetrier(attempts int, backoff time.Duration, logger *slog.Logger) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{
		Attempts: attempts,
		Backoff:  backoff,
		Logger:   logger,
		sleep:    sleepContext,
	}
}

// Do calls fn until it succeeds, returns a permanent error, or attempts run out.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		r.Logger.Warn("llm.retry", "op", op, "attempt", attempt, "error", err)
		if attempt == r.Attempts {
			break
		}

		wait := r.Backoff * time.Duration(1<<(attempt-1))
		if serr := r.sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	r.Logger.Error("llm.retry_exhausted", "op", op, "attempts", r.Attempts, "error", err)
	return err
}

// retryable reports whether another attempt might succeed. Client errors
// other than rate limiting are permanent.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPStatusCode
		return code == http.StatusTooManyRequests || code >= 500 || code == 0
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		code := reqErr.HTTPStatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
