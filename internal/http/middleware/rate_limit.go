package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rsommers/lakehouse/internal/http/response"
	"github.com/rsommers/lakehouse/pkg/logger"
)

// RateLimiter is a fixed-window per-IP limiter over Redis, used on the
// credential endpoints (login, forgot-password). Fails open when Redis is
// unreachable.
type RateLimiter struct {
	rdb      *redis.Client
	requests int
	window   time.Duration
	prefix   string
}

func NewRateLimiter(rdb *redis.Client, prefix string, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:      rdb,
		requests: requests,
		window:   window,
		prefix:   prefix,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rdb == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(r.Context(), ClientIP(r)) {
			response.RateLimit(w, "Too many requests. Try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, ip string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the IP so raw addresses never sit in Redis.
	key := fmt.Sprintf("%s:%x", rl.prefix, sha256.Sum256([]byte(ip)))

	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		logger.WarnContext(ctx, "Rate limit check failed", "error", err)
		return true
	}
	if count == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
			logger.WarnContext(ctx, "Rate limit expire failed", "error", err)
		}
	}

	return count <= int64(rl.requests)
}
