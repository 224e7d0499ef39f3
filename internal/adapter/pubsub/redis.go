package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"todopop/internal/core/port"
)

const redisChannel = "todopop:changes"

// RedisFeed wraps a local Hub and relays changes over redis pub/sub, so a
// mutation on any server instance wakes the subscriptions on all of them.
// Local delivery comes back through the redis round trip as well, keeping a
// single delivery path.
type RedisFeed struct {
	hub    *Hub
	client *redis.Client
	logger zerolog.Logger
	sub    *redis.PubSub
}

func NewRedisFeed(ctx context.Context, url string, hub *Hub, logger zerolog.Logger) (*RedisFeed, error) {
	opts, err := redis.ParseURL(url)

	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	feed := &RedisFeed{
		hub:    hub,
		client: client,
		logger: logger,
		sub:    client.Subscribe(ctx, redisChannel),
	}

	go feed.relay()

	return feed, nil
}

func (f *RedisFeed) Publish(ctx context.Context, change port.Change) {
	payload, err := json.Marshal(change)

	if err != nil {
		f.logger.Error().Err(err).Msg("marshal change")
		return
	}

	if err := f.client.Publish(ctx, redisChannel, payload).Err(); err != nil {
		f.logger.Error().Err(err).Msg("publish change to redis")
		// Degrade to local delivery so this instance's subscribers still wake.
		f.hub.Publish(ctx, change)
	}
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan port.Change, func()) {
	return f.hub.Subscribe(ctx)
}

func (f *RedisFeed) relay() {
	for msg := range f.sub.Channel() {
		var change port.Change

		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			f.logger.Warn().Err(err).Msg("drop malformed change message")
			continue
		}

		f.hub.Publish(context.Background(), change)
	}
}

func (f *RedisFeed) Close() error {
	f.sub.Close()
	f.hub.Close()

	return f.client.Close()
}
