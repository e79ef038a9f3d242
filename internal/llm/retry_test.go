package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func recordingRetrier(attempts int, backoff time.Duration) (*Retrier, *[]time.Duration) {
	var waits []time.Duration
	r := NewRetrier(attempts, backoff, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	r, waits := recordingRetrier(3, 1200*time.Millisecond)

	calls := 0
	err := r.Do(context.Background(), "extract", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}

	want := []time.Duration{1200 * time.Millisecond, 2400 * time.Millisecond}
	if len(*waits) != len(want) {
		t.Fatalf("Expected waits %v, got %v", want, *waits)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Errorf("Wait %d: expected %v, got %v", i, want[i], (*waits)[i])
		}
	}
}

func TestRetrier_Exhausted(t *testing.T) {
	r, waits := recordingRetrier(3, time.Second)
	sentinel := errors.New("still down")

	calls := 0
	err := r.Do(context.Background(), "extract", func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if len(*waits) != 2 {
		t.Errorf("Expected no wait after the final attempt, got %v", *waits)
	}
}

func TestRetrier_PermanentError(t *testing.T) {
	r, _ := recordingRetrier(3, time.Second)

	calls := 0
	err := r.Do(context.Background(), "extract", func(ctx context.Context) error {
		calls++
		return &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected a single call for a permanent error, got %d", calls)
	}
}

func TestRetrier_MinimumOneAttempt(t *testing.T) {
	r := NewRetrier(0, time.Second, nil)
	if r.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", r.Attempts)
	}
}

func TestRetrier_SleepHonoursContext(t *testing.T) {
	r := NewRetrier(3, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, "extract", func(ctx context.Context) error {
		return errors.New("temporary")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain", errors.New("boom"), true},
		{"canceled", context.Canceled, false},
		{"rate limited", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"server", &openai.APIError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, false},
		{"request error 503", &openai.RequestError{HTTPStatusCode: http.StatusServiceUnavailable}, true},
		{"request error 404", &openai.RequestError{HTTPStatusCode: http.StatusNotFound}, false},
		{"status 529", fmt.Errorf("Anthropic API error: %w", &StatusError{Provider: "anthropic", StatusCode: 529}), true},
		{"status 429", &StatusError{Provider: "ollama", StatusCode: http.StatusTooManyRequests}, true},
		{"status 401", &StatusError{Provider: "anthropic", StatusCode: http.StatusUnauthorized}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
