package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(600)

	if got, want := float64(limiter.Limit()), 10.0; got != want {
		t.Errorf("Limit() = %v, want %v", got, want)
	}
	if got, want := limiter.Burst(), 600; got != want {
		t.Errorf("Burst() = %d, want %d", got, want)
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(60)

	// The full burst should be available immediately.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 60; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait() failed on request %d: %v", i, err)
		}
	}
}

func TestRateLimiterThrottlesAfterBurst(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(60)
	limiter.AllowN(time.Now(), 60) // drain the bucket

	if limiter.Allow() {
		t.Error("Allow() = true after bucket drained, want false")
	}
}
