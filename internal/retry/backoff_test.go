package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorKind
	}{
		{"request timed out", KindTimeout},
		{"context deadline exceeded", KindTimeout},
		{"rate limit exceeded", KindRateLimited},
		{"429 too many requests", KindRateLimited},
		{"connection refused", KindNetworkError},
		{"navigation failed", KindNavigationError},
		{"no such element: selector", KindSelectorError},
		{"failed to unmarshal json", KindParseError},
		{"something unexpected", KindUnknown},
	}

	for _, tt := range tests {
		got := Classify(errors.New(tt.msg))
		if got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(KindTimeout) || !IsRetryable(KindNetworkError) || !IsRetryable(KindRateLimited) {
		t.Error("expected transient I/O kinds to be retryable")
	}
	if IsRetryable(KindParseError) || IsRetryable(KindSelectorError) || IsRetryable(KindNavigationError) {
		t.Error("expected parse/selector/navigation kinds to be non-retryable")
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultBackoff(), func(ctx context.Context) error {
		calls++
		return errors.New("failed to unmarshal json")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call for non-retryable error, got %d", calls)
	}
}

func TestDo_RetryableEventuallySucceeds(t *testing.T) {
	b := DefaultBackoff()
	b.Initial = time.Millisecond
	b.MaxAttempts = 3

	calls := 0
	err := Do(context.Background(), b, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	b := DefaultBackoff()
	b.Initial = time.Millisecond
	b.MaxAttempts = 2

	calls := 0
	err := Do(context.Background(), b, func(ctx context.Context) error {
		calls++
		return errors.New("network unreachable")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls (MaxAttempts), got %d", calls)
	}
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	b := Backoff{Initial: time.Second, Multiplier: 10, MaxDelay: 5 * time.Second, MaxAttempts: 5}
	d := b.delay(3)
	if d != 5*time.Second {
		t.Errorf("expected delay capped at 5s, got %v", d)
	}
}
