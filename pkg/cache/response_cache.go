// Package cache holds a short-TTL response cache for the one-shot list call.
// Entries are flushed whenever the change feed reports a mutation, so clients
// never read a stale list for longer than it takes the event to arrive.
package cache

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"todopop/internal/core/port"
	"todopop/pkg/metrics"
)

type ResponseCache struct {
	cache   *gocache.Cache
	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.AppMetrics
}

type CachedResponse struct {
	StatusCode int
	Body       []byte
	Timestamp  time.Time
}

func NewResponseCache(ttl time.Duration, logger zerolog.Logger, appMetrics *metrics.AppMetrics) *ResponseCache {
	return &ResponseCache{
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
		logger:  logger,
		metrics: appMetrics,
	}
}

// InvalidateOn flushes the cache on every change until ctx is cancelled.
func (rc *ResponseCache) InvalidateOn(ctx context.Context, feed port.ChangeFeed) {
	changes, cancel := feed.Subscribe(ctx)

	go func() {
		defer cancel()

		for range changes {
			rc.cache.Flush()
		}
	}()
}

type responseWriter struct {
	gin.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Middleware caches successful GET responses by path and query string.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		cacheKey := rc.generateCacheKey(c, path)

		if cachedResp, found := rc.cache.Get(cacheKey); found {
			cached := cachedResp.(CachedResponse)

			if time.Since(cached.Timestamp) < rc.ttl {
				if rc.metrics != nil {
					rc.metrics.RecordCacheHit(path)
				}

				rc.logger.Debug().
					Str("path", path).
					Dur("age", time.Since(cached.Timestamp)).
					Msg("cache hit")

				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, "application/json", cached.Body)
				c.Abort()
				return
			}

			rc.cache.Delete(cacheKey)
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(path)
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			statusCode:     200,
		}
		c.Writer = writer

		c.Next()

		if writer.statusCode >= 200 && writer.statusCode < 300 {
			rc.cache.Set(cacheKey, CachedResponse{
				StatusCode: writer.statusCode,
				Body:       writer.body.Bytes(),
				Timestamp:  time.Now(),
			}, rc.ttl)
		}
	}
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string) string {
	key := path

	if c.Request.URL.RawQuery != "" {
		key += "?" + c.Request.URL.RawQuery
	}

	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}
