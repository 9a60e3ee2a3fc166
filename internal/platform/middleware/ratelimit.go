package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops buckets of clients not seen for this long. Zero keeps
	// them forever.
	IdleTTL time.Duration
}

// DefaultLoginRateLimit bounds credential submissions per client address.
func DefaultLoginRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 0.2,
		BurstSize:         5,
		IdleTTL:           10 * time.Minute,
	}
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func (b *tokenBucket) allow(now time.Time) bool {
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) retryAfter() int {
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

type rateLimiterStore struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	config  RateLimitConfig
	now     func() time.Time
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
		now:     time.Now,
	}
}

// take consumes a token for key. It returns the retry delay in seconds
// when none is left.
func (s *rateLimiterStore) take(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	b, ok := s.buckets[key]
	if !ok {
		b = &tokenBucket{
			tokens:     float64(s.config.BurstSize),
			maxTokens:  float64(s.config.BurstSize),
			refillRate: s.config.RequestsPerSecond,
			lastRefill: now,
		}
		s.buckets[key] = b
	}
	if b.allow(now) {
		return true, 0
	}
	return false, b.retryAfter()
}

func (s *rateLimiterStore) sweep(now time.Time) {
	if s.config.IdleTTL <= 0 {
		return
	}
	for k, b := range s.buckets {
		if now.Sub(b.lastRefill) > s.config.IdleTTL {
			delete(s.buckets, k)
		}
	}
}

// RateLimit limits requests per client address with a token bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newRateLimiterStore(cfg)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retry := store.take(c.RealIP())
			c.Response().Header().Set("X-RateLimit-Limit", limit)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
			}
			return next(c)
		}
	}
}
