package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

const jobSubmittedChannel = "job:submitted"

// JobSubmittedEvent announces a new CREATED job to every dispatcher.
type JobSubmittedEvent struct {
	JobID      string `json:"job_id"`
	OwnerKey   string `json:"owner_key"`
	Type       string `json:"type"`
	Timestamp  int64  `json:"timestamp"`
	InstanceID string `json:"instance_id,omitempty"`
}

// RedisJobEventBus publishes and receives job.submitted notifications.
type RedisJobEventBus struct {
	bus
}

func NewRedisJobEventBus(client *redis.Client, prefix string, log logger.Interface) *RedisJobEventBus {
	return &RedisJobEventBus{bus: newBus(client, prefix, log)}
}

// JobSubmitted publishes the event. Failures are logged, never returned: the
// dispatcher poll ticker picks the job up anyway.
func (b *RedisJobEventBus) JobSubmitted(ctx context.Context, j *job.Job) {
	event := JobSubmittedEvent{
		JobID:      j.ID(),
		OwnerKey:   j.OwnerKey(),
		Type:       string(j.Type()),
		Timestamp:  time.Now().Unix(),
		InstanceID: b.instanceID,
	}
	if err := b.publish(ctx, b.channel(jobSubmittedChannel), event); err != nil {
		b.logger.Warnw("job submitted notification lost", "job_id", j.ID(), "error", err)
	}
}

// SubscribeSubmitted calls handler for jobs submitted by other instances until ctx ends.
func (b *RedisJobEventBus) SubscribeSubmitted(ctx context.Context, handler func(event JobSubmittedEvent)) error {
	return b.subscribeWithReconnect(ctx, b.channel(jobSubmittedChannel), func(payload string) {
		var event JobSubmittedEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			b.logger.Warnw("failed to unmarshal job event", "payload", payload, "error", err)
			return
		}
		if event.InstanceID == b.instanceID {
			return
		}
		handler(event)
	})
}
