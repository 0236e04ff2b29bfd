package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/mealplanner/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per user in fixed Redis windows. Without a
// Redis client it falls back to an in-process token bucket per user.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.Limit <= 0 {
		config.Limit = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:   redisClient,
		config:  config,
		logger:  logger,
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}
}

// NewAIRateLimiter limits calls to the AI-backed endpoints.
func NewAIRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:ai",
	}, logger)
}

// Limit reports the number of requests allowed per window.
func (rl *RateLimiter) Limit() int { return rl.config.Limit }

// Window reports the window length.
func (rl *RateLimiter) Window() time.Duration { return rl.config.Window }

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, ok := UserID(c); ok {
			key = id.String()
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimited.Inc()
			retry := int(resetTime.Sub(rl.now()).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retry,
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) windowKey(key string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix()), windowStart.Add(rl.config.Window)
}

// IsAllowed counts one request for key.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	if rl.redis == nil {
		return rl.allowLocal(key)
	}

	redisKey, resetTime := rl.windowKey(key)
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, resetTime, nil
}

// GetRemainingRequests returns the number of requests key may still make in
// the current window without counting one.
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, key string) (int, time.Time, error) {
	if rl.redis == nil {
		lim := rl.bucket(key)
		return int(lim.TokensAt(rl.now())), rl.now().Add(rl.config.Window), nil
	}

	redisKey, resetTime := rl.windowKey(key)
	count, err := rl.redis.Get(ctx, redisKey).Int()
	if err == redis.Nil {
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetTime, nil
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	lim, ok := rl.buckets[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		lim = rate.NewLimiter(rate.Every(every), rl.config.Limit)
		rl.buckets[key] = lim
	}
	return lim
}

func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time, error) {
	lim := rl.bucket(key)
	now := rl.now()
	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	reset := now
	if remaining < rl.config.Limit {
		reset = now.Add(rl.config.Window / time.Duration(rl.config.Limit))
	}
	return allowed, remaining, reset, nil
}
