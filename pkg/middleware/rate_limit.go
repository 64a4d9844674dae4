package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/response"
)

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int                            // Max requests per window
	Window   time.Duration                  // Time window duration
	KeyFunc  func(r *http.Request) []string // Function to generate rate limit keys
	SkipFunc func(r *http.Request) bool     // Function to skip rate limiting
}

// RateLimiter is a fixed-window limiter backed by Redis counters.
type RateLimiter struct {
	client redis.Cmdable
	config RateLimitConfig
}

func NewRateLimiter(client redis.Cmdable, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKeyFunc
	}
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.config.SkipFunc != nil && rl.config.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}

			for _, key := range rl.config.KeyFunc(r) {
				if !rl.Allow(r.Context(), key) {
					response.RateLimit(w, "Too many requests. Try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow records a hit for key and reports whether it is within the limit.
// Redis failures fail open.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	hasher := sha256.New()
	hasher.Write([]byte(key))
	window := time.Now().UnixNano() / int64(rl.config.Window)
	redisKey := fmt.Sprintf("ratelimit:%x:%d", hasher.Sum(nil), window)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, rl.config.Window)
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "Rate limit check failed", "error", err)
		return true
	}

	return incr.Val() <= int64(rl.config.Requests)
}

// OnlyMutations skips rate limiting for safe methods.
func OnlyMutations(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ClientIPKeyFunc keys requests by client IP
func ClientIPKeyFunc(r *http.Request) []string {
	if ip := getClientIP(r); ip != "" {
		return []string{"ip:" + ip}
	}
	return nil
}

// getClientIP extracts the real client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
