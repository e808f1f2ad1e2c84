package security

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ToolCallsPerMin: 5})

	for i := range 5 {
		if err := rl.Allow(KindToolCall); err != nil {
			t.Fatalf("Allow(%d) returned error: %v", i, err)
		}
	}
	if err := rl.Allow(KindToolCall); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RunsPerMin: 2})
	rl.now = func() time.Time { return now }

	_ = rl.Allow(KindRun)
	_ = rl.Allow(KindRun)
	if err := rl.Allow(KindRun); !errors.Is(err, ErrRateLimited) {
		t.Fatal("expected rate limit")
	}

	now = now.Add(61 * time.Second)
	if err := rl.Allow(KindRun); err != nil {
		t.Fatalf("expected allow after window, got %v", err)
	}
}

func TestRateLimiter_UnknownAndDisabledKinds(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{APIRequestsPerMin: -1})

	if err := rl.Allow("unknown_kind"); err != nil {
		t.Fatalf("expected nil for unknown kind, got %v", err)
	}
	for range 1000 {
		if err := rl.Allow(KindAPIRequest); err != nil {
			t.Fatalf("disabled bucket limited a request: %v", err)
		}
	}
	if got := rl.Limit(KindAPIRequest); got != 0 {
		t.Fatalf("Limit(disabled) = %d, want 0", got)
	}
}

func TestRateLimiter_AllowN(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ToolCallsPerMin: 10})

	if err := rl.AllowN(KindToolCall, 8); err != nil {
		t.Fatalf("AllowN(8): %v", err)
	}
	if err := rl.AllowN(KindToolCall, 3); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("AllowN(3) = %v, want ErrRateLimited", err)
	}
	// A rejected batch records nothing.
	if err := rl.AllowN(KindToolCall, 2); err != nil {
		t.Fatalf("AllowN(2): %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	defaults := rateLimitConfigDefaults()

	if got := rl.Limit(KindToolCall); got != defaults.ToolCallsPerMin {
		t.Errorf("tool_call limit = %d, want %d", got, defaults.ToolCallsPerMin)
	}
	if got := rl.Limit(KindRun); got != defaults.RunsPerMin {
		t.Errorf("run limit = %d, want %d", got, defaults.RunsPerMin)
	}
	if got := rl.Limit(KindAPIRequest); got != defaults.APIRequestsPerMin {
		t.Errorf("api_request limit = %d, want %d", got, defaults.APIRequestsPerMin)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ToolCallsPerMin: 100})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow(KindToolCall) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Fatalf("allowed = %d, want 100", allowed)
	}
}
