// Package pubsub distributes job and pool events between poolkeeper processes
// over Redis Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/poolkeeper/internal/shared/goroutine"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// bus is the Redis plumbing shared by the typed event buses.
type bus struct {
	client     *redis.Client
	prefix     string
	instanceID string
	logger     logger.Interface
}

func newBus(client *redis.Client, prefix string, log logger.Interface) bus {
	return bus{
		client:     client,
		prefix:     prefix,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (b *bus) channel(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + ":" + name
}

func (b *bus) publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish event", "channel", channel, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// subscribeWithReconnect wraps subscribe with automatic reconnection and exponential backoff.
func (b *bus) subscribeWithReconnect(ctx context.Context, channel string, handler func(payload string)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, channel, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("event subscription disconnected, reconnecting",
			"channel", channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *bus) subscribe(ctx context.Context, channel string, handler func(payload string)) error {
	ps := b.client.Subscribe(ctx, channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	b.logger.Infow("subscribed to event channel", "channel", channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("event subscriber stopped", "channel", channel, "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("event channel closed", "channel", channel)
				return nil
			}
			goroutine.SafeGo(b.logger, "event-handler-"+channel, func() {
				handler(msg.Payload)
			})
		}
	}
}
