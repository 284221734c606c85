package boundary

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig defines per-operation throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond int
	BurstSize         int
}

// RateLimiter throttles calls per operation using token buckets. Operations
// without a configured limit are always allowed.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
}

// NewRateLimiter creates a rate limiter with the provided per-operation limits.
func NewRateLimiter(config map[string]RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{buckets: make(map[string]*tokenBucket)}
	rl.Configure(config)
	return rl
}

// Configure replaces the per-operation limits. Existing buckets keep their
// spent tokens so a reload cannot be used to skip a limit.
func (rl *RateLimiter) Configure(config map[string]RateLimitConfig) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	buckets := make(map[string]*tokenBucket, len(config))
	for operation, cfg := range config {
		if bucket, ok := rl.buckets[operation]; ok {
			bucket.configure(cfg.RequestsPerSecond, cfg.BurstSize)
			buckets[operation] = bucket
		} else {
			buckets[operation] = newTokenBucket(cfg.RequestsPerSecond, cfg.BurstSize)
		}
	}
	rl.buckets = buckets
}

// Allow reports whether a call to the operation may proceed now.
func (rl *RateLimiter) Allow(operation string) bool {
	rl.mu.RLock()
	bucket, ok := rl.buckets[operation]
	rl.mu.RUnlock()

	if !ok {
		return true
	}
	return bucket.take()
}

// RateLimitStats exposes the current state of one operation's bucket.
type RateLimitStats struct {
	Limit     int     `json:"limit"`
	BurstSize int     `json:"burstSize"`
	Available float64 `json:"available"`
}

// Stats returns the current bucket state for every limited operation.
func (rl *RateLimiter) Stats() map[string]RateLimitStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make(map[string]RateLimitStats, len(rl.buckets))
	for operation, bucket := range rl.buckets {
		stats[operation] = bucket.stats()
	}
	return stats
}

// retryAfter estimates the seconds until the operation's bucket has a token
// again, rounded up and at least 1.
func (rl *RateLimiter) retryAfter(operation string) int {
	rl.mu.RLock()
	bucket, ok := rl.buckets[operation]
	rl.mu.RUnlock()

	if !ok {
		return 1
	}
	return bucket.retryAfter()
}

// Throttle guards a fallible handler with the limiter. Rejected calls go
// through the normal error boundary as a rate-limit failure with a
// Retry-After estimate, and the standard X-RateLimit headers are stamped on
// every reply.
func (m *Middleware) Throttle(operation string, limiter *RateLimiter, h HandlerFunc) http.Handler {
	return m.Handle(operation, func(w http.ResponseWriter, r *http.Request) error {
		allowed := limiter.Allow(operation)
		writeRateLimitHeaders(w, limiter, operation)

		if !allowed {
			seconds := limiter.retryAfter(operation)
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			return &RateLimitError{RetryAfter: seconds}
		}
		return h(w, r)
	})
}

func writeRateLimitHeaders(w http.ResponseWriter, limiter *RateLimiter, operation string) {
	stats, ok := limiter.Stats()[operation]
	if !ok {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(stats.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(stats.Available)))
}

// tokenBucket is a standard refill-on-demand token bucket.
type tokenBucket struct {
	mu         sync.Mutex
	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
}

func newTokenBucket(rps, burstSize int) *tokenBucket {
	if rps <= 0 {
		rps = 100
	}
	if burstSize <= 0 {
		burstSize = rps
	}
	return &tokenBucket{
		rate:       float64(rps),
		capacity:   float64(burstSize),
		tokens:     float64(burstSize),
		lastRefill: time.Now(),
	}
}

func (tb *tokenBucket) configure(rps, burstSize int) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if rps <= 0 {
		rps = 100
	}
	if burstSize <= 0 {
		burstSize = rps
	}

	tb.rate = float64(rps)
	tb.capacity = float64(burstSize)
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

func (tb *tokenBucket) take() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

func (tb *tokenBucket) refill() {
	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

func (tb *tokenBucket) stats() RateLimitStats {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return RateLimitStats{
		Limit:     int(tb.rate),
		BurstSize: int(tb.capacity),
		Available: tb.tokens,
	}
}

func (tb *tokenBucket) retryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		return 1
	}
	seconds := (1.0 - tb.tokens) / tb.rate
	return int(math.Max(1, math.Ceil(seconds)))
}
