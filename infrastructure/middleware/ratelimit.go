package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	internalhttputil "github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/infrastructure/logging"
)

// defaultMaxLimiters bounds how many per-key limiters Cleanup retains.
const defaultMaxLimiters = 10000

// RateLimiter provides rate limiting functionality
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	limit    int
	window   time.Duration
	logger   *logging.Logger
	maxSize  int
}

// LimiterCount returns the number of active limiters.
func (rl *RateLimiter) LimiterCount() int {
	if rl == nil {
		return 0
	}
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerSecond, burst int, logger *logging.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		limit:    requestsPerSecond,
		window:   time.Second,
		logger:   logger,
	}
}

// NewRateLimiterWithWindow creates a rate limiter configured by a fixed window
// and request budget, e.g. 100 requests per 1 minute.
func NewRateLimiterWithWindow(limit int, window time.Duration, burst int, logger *logging.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Second
	}
	requestsPerSecond := float64(limit) / window.Seconds()
	if requestsPerSecond < 0 {
		requestsPerSecond = 0
	}

	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

// getLimiter returns a rate limiter for the given key (e.g., user ID or IP)
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}

	return limiter
}

// defaultKeyFunc buckets by authenticated user ID when present, else by
// client IP.
func defaultKeyFunc(r *http.Request) string {
	key := logging.GetUserID(r.Context())
	if key == "" {
		key = internalhttputil.ClientIP(r)
	}
	if key == "" {
		key = "unknown"
	}
	return key
}

// Handler returns the rate limiting middleware handler, bucketing by
// authenticated user ID or client IP.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return rl.HandlerWithKeyFunc(defaultKeyFunc, next)
}

// HandlerWithKeyFunc is like Handler but lets the caller choose the bucket
// key — e.g. a constant key for a single global bucket (spec §4.D's
// "general" limiter), rather than per-IP/per-user buckets.
func (rl *RateLimiter) HandlerWithKeyFunc(keyFunc func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFunc(r)

		if !rl.Allow(key) {
			if rl.logger != nil {
				rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
					"key":    key,
					"path":   r.URL.Path,
					"method": r.Method,
				})
			}

			retryAfter := rl.RetryAfterSeconds()
			serviceErr := errors.RateLimited(retryAfter)
			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			internalhttputil.WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Allow reports whether a request bucketed under key may proceed, consuming
// a token from that key's bucket if so.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// RetryAfterSeconds is the value to surface in a 429 Retry-After header for
// this limiter's configured window.
func (rl *RateLimiter) RetryAfterSeconds() int {
	window := rl.window
	if window <= 0 {
		window = time.Second
	}
	return int(math.Ceil(window.Seconds()))
}

// Cleanup trims the per-key limiter map down to maxSize once it grows past
// that bound. It does not track last-access time; once trimmed, any key may
// need to rebuild its bucket from a fresh burst allowance.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	maxSize := rl.maxSize
	if maxSize <= 0 {
		maxSize = defaultMaxLimiters
	}
	if len(rl.limiters) <= maxSize {
		return
	}

	trimmed := make(map[string]*rate.Limiter, maxSize)
	for key, limiter := range rl.limiters {
		if len(trimmed) >= maxSize {
			break
		}
		trimmed[key] = limiter
	}
	rl.limiters = trimmed
}

// StartCleanup starts a background goroutine to periodically cleanup old limiters
func (rl *RateLimiter) StartCleanup(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
