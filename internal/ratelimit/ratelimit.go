// Package ratelimit provides Redis-based rate limiting for API endpoints.
// The generative-language API is metered per key, so the assistant proxy is
// the one surface that must not be hammered.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Coder-vibhi/baua-lms/internal/metrics"
)

// ErrRateLimited is returned when a rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter provides rate limiting functionality using Redis.
type Limiter struct {
	redis *redis.Client
}

// NewLimiter creates a new rate limiter.
func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{redis: rdb}
}

// AssistantLimits defines the rate limits for AI assistant calls.
type AssistantLimits struct {
	// Per-user: questions a single learner can ask per window.
	UserLimit  int
	UserWindow time.Duration

	// Per-IP: fallback for unauthenticated abuse.
	IPLimit  int
	IPWindow time.Duration
}

// DefaultAssistantLimits returns the recommended limits, with the per-user
// ceiling taken from config.
func DefaultAssistantLimits(perMinute int) AssistantLimits {
	if perMinute <= 0 {
		perMinute = 10
	}
	return AssistantLimits{
		UserLimit:  perMinute,
		UserWindow: time.Minute,
		IPLimit:    perMinute * 5,
		IPWindow:   time.Minute,
	}
}

// CheckAssistant checks the per-user and per-IP limits for one assistant
// request. Returns nil if allowed, ErrRateLimited otherwise.
func (l *Limiter) CheckAssistant(ctx context.Context, limits AssistantLimits, userID, ip string) error {
	if l == nil || l.redis == nil {
		// If Redis is unavailable, allow the request (fail-open for availability)
		return nil
	}

	userKey := fmt.Sprintf("ratelimit:assistant:user:%s", userID)
	if err := l.checkLimit(ctx, userKey, limits.UserLimit, limits.UserWindow); err != nil {
		metrics.RateLimitHits.WithLabelValues("assistant").Inc()
		return ErrRateLimited
	}

	if ip != "" {
		ipKey := fmt.Sprintf("ratelimit:assistant:ip:%s", ip)
		if err := l.checkLimit(ctx, ipKey, limits.IPLimit, limits.IPWindow); err != nil {
			metrics.RateLimitHits.WithLabelValues("assistant").Inc()
			return ErrRateLimited
		}
	}

	return nil
}

// checkLimit performs the actual rate limit check using Redis INCR.
func (l *Limiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail-open on Redis errors to maintain availability
		return nil
	}

	if count == 1 {
		l.redis.Expire(ctx, key, window)
	}

	if int(count) > limit {
		return ErrRateLimited
	}

	return nil
}
