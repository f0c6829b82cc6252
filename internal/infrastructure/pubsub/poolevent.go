package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

const poolChangeChannel = "pool:change"

// RedisPoolEventBus fans committed pool changes out to downstream listeners,
// such as certificate regeneration.
type RedisPoolEventBus struct {
	bus
}

func NewRedisPoolEventBus(client *redis.Client, prefix string, log logger.Interface) *RedisPoolEventBus {
	return &RedisPoolEventBus{bus: newBus(client, prefix, log)}
}

func (b *RedisPoolEventBus) PublishPoolChange(ctx context.Context, event pool.ChangeEvent) error {
	if err := b.publish(ctx, b.channel(poolChangeChannel), event); err != nil {
		return err
	}
	b.logger.Debugw("pool change event published",
		"owner_id", event.OwnerID,
		"operation", event.Operation,
		"revoked", len(event.RevokedEntitlements),
	)
	return nil
}

// Subscribe calls handler for every pool change until ctx ends.
func (b *RedisPoolEventBus) Subscribe(ctx context.Context, handler func(event pool.ChangeEvent)) error {
	return b.subscribeWithReconnect(ctx, b.channel(poolChangeChannel), func(payload string) {
		var event pool.ChangeEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			b.logger.Warnw("failed to unmarshal pool change event", "payload", payload, "error", err)
			return
		}
		handler(event)
	})
}
