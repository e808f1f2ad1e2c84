package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a request exceeds the rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter kinds.
const (
	KindToolCall   = "tool_call"
	KindRun        = "run"
	KindAPIRequest = "api_request"
)

// RateLimitConfig holds configurable per-minute limits. Zero means the
// default; a negative value disables the bucket.
type RateLimitConfig struct {
	ToolCallsPerMin   int `yaml:"tool_calls_per_min"`
	RunsPerMin        int `yaml:"runs_per_min"`
	APIRequestsPerMin int `yaml:"api_requests_per_min"`
}

func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		ToolCallsPerMin:   600,
		RunsPerMin:        60,
		APIRequestsPerMin: 300,
	}
}

// RateLimiter implements sliding-window rate limiting. Each bucket keeps
// the timestamps of recent events within its window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	window time.Duration
	limit  int
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	rl := &RateLimiter{
		now:     time.Now,
		buckets: make(map[string]*bucket, 3),
	}
	rl.addBucket(KindToolCall, cfg.ToolCallsPerMin, defaults.ToolCallsPerMin)
	rl.addBucket(KindRun, cfg.RunsPerMin, defaults.RunsPerMin)
	rl.addBucket(KindAPIRequest, cfg.APIRequestsPerMin, defaults.APIRequestsPerMin)
	return rl
}

func (rl *RateLimiter) addBucket(kind string, limit, def int) {
	switch {
	case limit < 0:
		return
	case limit == 0:
		limit = def
	}
	rl.buckets[kind] = &bucket{window: time.Minute, limit: limit}
}

// Allow records one event of kind and reports ErrRateLimited when the
// window is full. Kinds without a bucket are never limited.
func (rl *RateLimiter) Allow(kind string) error {
	return rl.AllowN(kind, 1)
}

// AllowN records n events of kind at once, or none when they do not fit.
func (rl *RateLimiter) AllowN(kind string, n int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[kind]
	if !ok {
		return nil
	}

	now := rl.now()
	b.evict(now)

	if len(b.events)+n > b.limit {
		return ErrRateLimited
	}
	for range n {
		b.events = append(b.events, now)
	}
	return nil
}

// Limit returns the configured limit for kind, or 0 when unlimited.
func (rl *RateLimiter) Limit(kind string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.buckets[kind]; ok {
		return b.limit
	}
	return 0
}

func (b *bucket) evict(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
