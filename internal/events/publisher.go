// Package events connects the hiring service to Redis Pub/Sub: outgoing
// application events and incoming AI assessment results.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobmate/hiring-service/internal/hiring"
)

// RedisPublisher publishes each event as JSON on the channel named by its
// type.
type RedisPublisher struct {
	rdb *redis.Client
}

var _ hiring.Publisher = (*RedisPublisher)(nil)

// NewPublisher returns a Redis-backed publisher, or hiring.NopPublisher when
// rdb is nil.
func NewPublisher(rdb *redis.Client) hiring.Publisher {
	if rdb == nil {
		return hiring.NopPublisher{}
	}
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, e hiring.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	if err := p.rdb.Publish(ctx, e.Type, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
