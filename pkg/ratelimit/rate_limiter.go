// Package ratelimit applies a fixed-window limit per function route, keyed by
// client IP. The platform has no user accounts, so the caller's address is
// the only stable key available.
package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"todopop/pkg/config"
	"todopop/pkg/metrics"
)

type RateLimiter struct {
	mu      sync.Mutex
	cache   *gocache.Cache
	configs map[string]config.RateLimitConfig
	logger  zerolog.Logger
	metrics *metrics.AppMetrics
}

type entry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(configs map[string]config.RateLimitConfig, logger zerolog.Logger, appMetrics *metrics.AppMetrics) *RateLimiter {
	return &RateLimiter{
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
		configs: configs,
		logger:  logger,
		metrics: appMetrics,
	}
}

func (rl *RateLimiter) configFor(method, path string) config.RateLimitConfig {
	if cfg, ok := rl.configs[method+" "+path]; ok {
		return cfg
	}

	if cfg, ok := rl.configs["default"]; ok {
		return cfg
	}

	return config.RateLimitConfig{Requests: 60, Window: time.Minute}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		cfg := rl.configFor(c.Request.Method, path)
		key := fmt.Sprintf("%s %s %s", c.Request.Method, path, c.ClientIP())

		now := time.Now()

		// The read-modify-write below must be one critical section, or two
		// parallel requests both see the same count and one increment is
		// lost.
		rl.mu.Lock()

		var current entry

		if raw, found := rl.cache.Get(key); found {
			current = raw.(entry)
		}

		if now.After(current.ResetTime) {
			current = entry{Count: 0, ResetTime: now.Add(cfg.Window)}
		}

		current.Count++
		rl.cache.Set(key, current, cfg.Window)

		rl.mu.Unlock()

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Requests))
		remaining := cfg.Requests - current.Count

		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if current.Count > cfg.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(path)
			}

			rl.logger.Warn().
				Str("path", path).
				Str("client", c.ClientIP()).
				Int("count", current.Count).
				Msg("rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code": "RATE_LIMITED",
					"errors": []gin.H{
						{"field": "request", "message": "Too many requests"},
					},
				},
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(path)
		}

		c.Next()
	}
}
