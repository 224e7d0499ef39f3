package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"todopop/internal/adapter/pubsub"
	"todopop/internal/core/port"
	"todopop/pkg/logging"
)

func newCachedRouter(rc *ResponseCache, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(rc.Middleware())

	router.GET("/fn/todos.list", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"todos": []string{}, "remaining": 0})
	})

	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestResponseCache_ServesSecondReadFromCache(t *testing.T) {
	rc := NewResponseCache(time.Minute, logging.NewNop(), nil)

	hits := 0
	router := newCachedRouter(rc, &hits)

	first := get(router, "/fn/todos.list")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Cache"))

	second := get(router, "/fn/todos.list")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	assert.Equal(t, 1, hits)
}

func TestResponseCache_QueryStringIsPartOfTheKey(t *testing.T) {
	rc := NewResponseCache(time.Minute, logging.NewNop(), nil)

	hits := 0
	router := newCachedRouter(rc, &hits)

	get(router, "/fn/todos.list")
	get(router, "/fn/todos.list?limit=2")

	assert.Equal(t, 2, hits)
}

func TestResponseCache_ChangeFlushesEntries(t *testing.T) {
	rc := NewResponseCache(time.Minute, logging.NewNop(), nil)

	hits := 0
	router := newCachedRouter(rc, &hits)

	hub := pubsub.NewHub()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc.InvalidateOn(ctx, hub)

	get(router, "/fn/todos.list")

	hub.Publish(ctx, port.Change{Op: port.ChangeOpAdd, UUID: "some-id", At: time.Now()})

	// The flush happens on the subscription goroutine.
	assert.Eventually(t, func() bool {
		recorder := get(router, "/fn/todos.list")
		return recorder.Header().Get("X-Cache") == ""
	}, time.Second, 10*time.Millisecond)

	assert.GreaterOrEqual(t, hits, 2)
}
