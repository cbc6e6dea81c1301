package httpx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"timeout", errors.New("dial tcp: i/o timeout"), ErrorTypeNetwork},
		{"refused", errors.New("connection refused"), ErrorTypeNetwork},
		{"reset", errors.New("read: connection reset by peer"), ErrorTypeNetwork},
		{"throttled", errors.New("request throttled"), ErrorTypeRetryable},
		{"http 500", errors.New("status 500: internal"), ErrorTypeRetryable},
		{"http 503", errors.New("status 503: unavailable"), ErrorTypeRetryable},
		{"http 400", errors.New("status 400: bad request"), ErrorTypeFatal},
		{"http 404", errors.New("status 404: not found"), ErrorTypeFatal},
		{"invalid input", errors.New("invalid dataset"), ErrorTypeFatal},
		{"unknown", errors.New("something odd"), ErrorTypeFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s",
					tt.err, ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestCalculateBackoffBounds(t *testing.T) {
	initial := 100 * time.Millisecond
	max := time.Second

	if got := CalculateBackoff(0, initial, max); got != 0 {
		t.Errorf("attempt 0 backoff = %v, want 0", got)
	}
	for attempt := 1; attempt <= 10; attempt++ {
		got := CalculateBackoff(attempt, initial, max)
		if got < 0 || got >= max {
			t.Errorf("attempt %d backoff %v outside [0, %v)", attempt, got, max)
		}
	}
}

func TestExecuteWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := ExecuteWithRetry(context.Background(), fastRetryConfig(5), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteWithRetryFatalStopsImmediately(t *testing.T) {
	boom := errors.New("status 404: not found")
	attempts := 0
	err := ExecuteWithRetry(context.Background(), fastRetryConfig(5), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the fatal error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (fatal errors are not retried)", attempts)
	}
}

func TestExecuteWithRetryExhausted(t *testing.T) {
	boom := errors.New("connection refused")
	attempts := 0
	err := ExecuteWithRetry(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped last error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteWithRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := ExecuteWithRetry(ctx, fastRetryConfig(5), func() error {
		attempts++
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0 for pre-cancelled context", attempts)
	}
}

func TestExecuteWithRetryOnRetryCallback(t *testing.T) {
	cfg := fastRetryConfig(3)
	var callbackAttempts []int
	cfg.OnRetry = func(attempt int, err error, errType ErrorType) {
		callbackAttempts = append(callbackAttempts, attempt)
		if errType != ErrorTypeNetwork {
			t.Errorf("errType = %s, want network", ErrorTypeName(errType))
		}
	}

	ExecuteWithRetry(context.Background(), cfg, func() error {
		return errors.New("broken pipe")
	})

	// Callback fires before each retry, not before the first attempt
	if len(callbackAttempts) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(callbackAttempts))
	}
	if callbackAttempts[0] != 1 || callbackAttempts[1] != 2 {
		t.Errorf("callback attempts = %v", callbackAttempts)
	}
}
