package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisPublisher fans events out over Redis Pub/Sub. The WebSocket
// handler subscribes to the same channels and forwards messages to
// connected clients.
type RedisPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisPublisher creates a RedisPublisher.
func NewRedisPublisher(rdb *redis.Client, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb: rdb,
		log: log.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish serializes the event and emits it on the topic channel.
// Failures are logged and swallowed: the push channel is advisory.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("topic", topic).Msg("Event marshal failed")
		return
	}
	if err := p.rdb.Publish(ctx, topic, raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("topic", topic).Msg("Event publish failed")
	}
}
