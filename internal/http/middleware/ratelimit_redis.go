package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tasklists/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// Without a reachable Redis it lets every request through.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter connects to addr. An empty addr or a failed ping yields a
// fail-open limiter so the API stays available.
func NewRateLimiter(addr, password string, db int) *RateLimiter {
	if addr == "" {
		return &RateLimiter{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return &RateLimiter{}
	}
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.client != nil
}

func (rl *RateLimiter) Close() error {
	if !rl.Enabled() {
		return nil
	}
	return rl.client.Close()
}

// Limit allows maxRequests per window per caller. Authenticated callers
// are keyed by user id, everyone else by client IP.
// key format: rl:<scope>:<window_seconds>:<identifier>
func (rl *RateLimiter) Limit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	windowSecs := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		ident := "ip:" + c.ClientIP()
		if uid, ok := UserID(c); ok {
			ident = "user:" + strconv.FormatInt(uid, 10)
		}
		key := "rl:" + scope + ":" + windowSecs + ":" + ident
		ctx := c.Request.Context()

		val, err := rl.hit(ctx, key, window)
		if err != nil {
			// fail open but tell the client
			c.Header("X-RateLimit-Error", "redis-error")
			logger.WithContext(ctx).Warn("rate limiter redis error", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope + ":" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope + ":" + c.FullPath()).Inc()
		c.Next()
	}
}

// hit counts one request in the window and returns the running total.
// INCR and TTL go in one transaction; any key found without an expiry gets
// one, so a failed EXPIRE is repaired on the caller's next request instead
// of blocking them for good.
func (rl *RateLimiter) hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	if ttl.Val() < 0 {
		if err := rl.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return incr.Val(), nil
}
