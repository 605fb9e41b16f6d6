package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

func fastRetries(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func TestExecuteRetriesStorageOutage(t *testing.T) {
	exec := NewExecutor(fastRetries(3))

	var hooked []int
	exec.OnRetry(func(op string, attempt int, _ error) {
		if op != "worker.match" {
			t.Errorf("unexpected operation %q", op)
		}
		hooked = append(hooked, attempt)
	})

	attempts := 0
	err := exec.Execute(context.Background(), "worker.match", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return domain.WrapError(domain.ErrStorageUnavailable, "insert", errors.New("conn reset"))
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(hooked) != 2 || hooked[0] != 1 || hooked[1] != 2 {
		t.Fatalf("unexpected retry hook calls %v", hooked)
	}
}

func TestExecuteDoesNotRetryInvalidRequest(t *testing.T) {
	exec := NewExecutor(fastRetries(3))

	attempts := 0
	errInvalid := domain.WrapError(domain.ErrInvalidRequest, "match", errors.New("applicant_id is required"))
	err := exec.Execute(context.Background(), "worker.match", func(context.Context) error {
		attempts++
		return errInvalid
	}, nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	exec := NewExecutor(fastRetries(2))

	errTemp := errors.New("still down")
	attempts := 0
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errTemp) || attempts != 2 {
		t.Fatalf("expected 2 attempts ending in %v, got %d and %v", errTemp, attempts, err)
	}
}

func TestExecuteStopsOnCanceledContext(t *testing.T) {
	exec := NewExecutor(fastRetries(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "worker.match", func(context.Context) error {
		t.Fatalf("operation must not run after cancel")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	cfg := fastRetries(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = 50 * time.Millisecond
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg)

	errStore := domain.WrapError(domain.ErrStorageUnavailable, "insert", errors.New("down"))
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "worker.match", func(context.Context) error {
			return errStore
		}, nil)
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Fatalf("expected storage error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "worker.match", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
}

func TestCallerErrorsDoNotTripBreaker(t *testing.T) {
	cfg := fastRetries(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	exec := NewExecutor(cfg)

	for i := 0; i < 5; i++ {
		_ = exec.Execute(context.Background(), "worker.match", func(context.Context) error {
			return domain.WrapError(domain.ErrInvalidRequest, "match", errors.New("bad"))
		}, nil)
	}
	called := false
	err := exec.Execute(context.Background(), "worker.match", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if err != nil || !called {
		t.Fatalf("expected breaker to stay closed, got %v", err)
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	cfg := Config{
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     300 * time.Millisecond,
		RetryMultiplier:     2,
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := cfg.Backoff(i + 1); got != w {
			t.Fatalf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestConfigDefaultsFillZeroValues(t *testing.T) {
	got := Config{RetryInitialBackoff: time.Second}.withDefaults()
	def := DefaultConfig()
	if got.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", got.RetryMaxAttempts)
	}
	if got.RetryMaxBackoff != time.Second {
		t.Fatalf("max backoff must not fall below initial, got %v", got.RetryMaxBackoff)
	}
	if got.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected default failure ratio, got %v", got.BreakerFailureRatio)
	}
}
