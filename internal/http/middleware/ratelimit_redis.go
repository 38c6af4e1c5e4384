package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns nil when addr is empty or the ping fails,
// so callers fall back to in-process behaviour and the server stays available.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// RedisRateLimit implements a fixed-window limiter per client IP using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return fixedWindow(rdb, maxRequests, window, func(c *gin.Context) (string, bool) {
		return "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP(), true
	})
}

// UserRateLimit limits writes per authenticated user rather than per IP.
// Requires the JWT middleware to run first.
// key format: user_rl:<user_id>:<window_seconds>
func UserRateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return fixedWindow(rdb, maxRequests, window, func(c *gin.Context) (string, bool) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			return "", false
		}
		return "user_rl:" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10), true
	})
}

func fixedWindow(rdb *redis.Client, maxRequests int, window time.Duration, keyFn func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key, ok := keyFn(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := c.Request.Context()

		val, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			rdb.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
