package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ariebrainware/clinic-booking/config"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultRateLimit  = 20
	defaultRateWindow = time.Minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func rateLimitKey(route, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", route, clientIP)
}

// RateLimiter creates a fixed-window rate limiting middleware backed by Redis.
// Without a Redis client, or when Redis fails, requests are let through.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := checkRateLimit(c.Request.Context(), rateLimitKey(route, clientIP), cfg.Limit, cfg.Window)
		if err != nil {
			log.Warn().Err(err).Str("ip", clientIP).Str("route", route).Msg("rate limit check failed, allowing request")
			c.Next()
			return
		}

		if !allowed {
			util.LogRateLimitExceeded(clientIP, route)
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimit reports whether the request identified by key fits in the current window.
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}

	pipe := rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	// a counter without a TTL opens the window, including one left behind by a failed EXPIRE
	if ttlCmd.Val() < 0 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return incrCmd.Val() <= int64(limit), nil
}

// ResetRateLimit clears the counter for a client on a route.
func ResetRateLimit(ctx context.Context, clientIP, route string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return fmt.Errorf("redis not available")
	}
	return rdb.Del(ctx, rateLimitKey(route, clientIP)).Err()
}
