package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      IsRetryable,
	}

	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := &RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      IsRetryable,
	}

	underlying := errors.New("still down")
	err := RetryWithConfig(context.Background(), cfg, func() error { return underlying })

	var maxErr ErrMaxRetriesExceeded
	if !errors.As(err, &maxErr) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got: %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Error("expected wrapped underlying error")
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      func(error) bool { return false },
	}

	_ = RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		return errors.New("fatal")
	})
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	fail := func() error { return errors.New("boom") }
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.GetState())
	}

	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen while open, got: %v", err)
	}
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to pass, got: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("expected closed state after successful probe, got %s", cb.GetState())
	}
}
