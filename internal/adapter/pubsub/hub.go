// Package pubsub fans committed todo changes out to live subscriptions.
// The in-process Hub serves a single server instance; RedisFeed bridges hubs
// across instances over redis pub/sub.
package pubsub

import (
	"context"
	"sync"

	"todopop/internal/core/port"
)

const subscriberBuffer = 16

type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan port.Change
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]chan port.Change),
	}
}

// Publish delivers the change to every subscriber. A subscriber that has
// fallen subscriberBuffer deliveries behind is skipped; it only misses an
// intermediate wakeup, and the next delivery still triggers a fresh snapshot.
func (h *Hub) Publish(ctx context.Context, change port.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for _, ch := range h.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context) (<-chan port.Change, func()) {
	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()

		ch := make(chan port.Change)
		close(ch)

		return ch, func() {}
	}

	id := h.nextID
	h.nextID++

	ch := make(chan port.Change, subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return ch, cancel
}

// Close tears down every subscription. Used at server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
