package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todopop/internal/core/port"
	"todopop/internal/core/service"
	"todopop/pkg/metrics"
)

// SubscribeHandler serves the subscribing read call over Server-Sent Events.
// Each delivery is a full list snapshot from a fresh consistent read: one on
// connect, then one after every committed change. The stream stays open for
// the client's whole session.
type SubscribeHandler struct {
	svc     port.TodoService
	feed    port.ChangeFeed
	logger  zerolog.Logger
	metrics *metrics.AppMetrics
}

func NewSubscribeHandler(svc port.TodoService, feed port.ChangeFeed, logger zerolog.Logger, appMetrics *metrics.AppMetrics) *SubscribeHandler {
	return &SubscribeHandler{
		svc:     svc,
		feed:    feed,
		logger:  logger,
		metrics: appMetrics,
	}
}

func (h *SubscribeHandler) ListTodos(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)

	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()

	changes, cancel := h.feed.Subscribe(ctx)
	defer cancel()

	if h.metrics != nil {
		h.metrics.SubscriberOpened()
		defer h.metrics.SubscriberClosed()
	}

	h.logger.Debug().Str("client", c.ClientIP()).Msg("subscription opened")
	defer h.logger.Debug().Str("client", c.ClientIP()).Msg("subscription closed")

	if err := h.sendSnapshot(c, flusher); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}

			// Collapse a burst of changes into one delivery.
			drained := false

			for !drained {
				select {
				case _, open := <-changes:
					if !open {
						drained = true
					}
				default:
					drained = true
				}
			}

			if err := h.sendSnapshot(c, flusher); err != nil {
				return
			}
		}
	}
}

func (h *SubscribeHandler) sendSnapshot(c *gin.Context, flusher http.Flusher) error {
	todos, err := h.svc.List(c.Request.Context())

	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read snapshot for subscription")
		return err
	}

	payload, err := json.Marshal(service.ToSnapshot(todos))

	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", payload); err != nil {
		return err
	}

	flusher.Flush()

	return nil
}
