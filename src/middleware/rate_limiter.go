package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterEntry holds a rate limiter with last used timestamp
type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// keyRateLimiter manages per-key rate limiters with automatic cleanup
type keyRateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newKeyRateLimiter(limit rate.Limit, burst int) *keyRateLimiter {
	return &keyRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (k *keyRateLimiter) getLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if entry, ok := k.limiters[key]; ok {
		entry.lastUsed = k.now()
		return entry.limiter
	}
	limiter := rate.NewLimiter(k.limit, k.burst)
	k.limiters[key] = &limiterEntry{
		limiter:  limiter,
		lastUsed: k.now(),
	}
	return limiter
}

// cleanupLoop removes stale entries every interval until Stop
func (k *keyRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			k.cleanup()
		case <-k.stopCh:
			return
		}
	}
}

// cleanup removes entries idle for longer than idleTTL
func (k *keyRateLimiter) cleanup() {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-k.idleTTL)
	for key, entry := range k.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(k.limiters, key)
		}
	}
}

func (k *keyRateLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// RateLimitConfig defines configuration for the rate limiting middleware
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// IPRateLimiter enforces per-client-IP request limits
type IPRateLimiter struct {
	limiter    *keyRateLimiter
	retryAfter time.Duration
}

// NewIPRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop on shutdown.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	// Default values for authentication endpoints
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	interval := time.Minute / time.Duration(cfg.RequestsPerMinute)
	l := &IPRateLimiter{
		limiter:    newKeyRateLimiter(rate.Every(interval), cfg.Burst),
		retryAfter: interval,
	}
	go l.limiter.cleanupLoop(5 * time.Minute)
	return l
}

// Middleware rejects requests over the limit with 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	retrySeconds := int(l.retryAfter.Round(time.Second) / time.Second)
	if retrySeconds < 1 {
		retrySeconds = 1
	}

	return func(c *gin.Context) {
		if !l.limiter.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", strconv.Itoa(retrySeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}

// Stop terminates the cleanup goroutine. It is safe to call more than once.
func (l *IPRateLimiter) Stop() {
	l.limiter.stopOnce.Do(func() { close(l.limiter.stopCh) })
}
