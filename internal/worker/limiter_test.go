package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 3 {
		t.Errorf("expected default burst 3 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 3)
	if l3.defaultRate != 1 {
		t.Errorf("expected default rate 1 for zero input, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Each provider gets its own bucket
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Token consumed; Allow must fail without waiting
	if limiter.Allow("anthropic") {
		t.Error("expected allow to fail (exhausted tokens)")
	}

	// Another provider's bucket is untouched
	if !limiter.Allow("openai") {
		t.Error("expected allow for other provider")
	}
}

func TestLimiter_SetProviderRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default

	// Strict limit for one provider
	limiter.SetProviderRate("anthropic", 0.1, 1)

	if !limiter.Allow("anthropic") {
		t.Error("first request should pass")
	}
	if limiter.Allow("anthropic") {
		t.Error("second request should fail")
	}

	// Other providers keep the fast default
	if !limiter.Allow("ollama") {
		t.Error("other provider should pass")
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	// Drain the burst token
	_ = limiter.Wait(ctx, "anthropic")

	cancel()
	if err := limiter.Wait(ctx, "anthropic"); err == nil {
		t.Error("expected error waiting on cancelled context")
	}
}
