package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const schedulerFlagKey = "scheduler:enabled"

// RedisSchedulerFlag shares the dispatcher pause flag between every process
// pointing at the same Redis. A missing key means enabled.
type RedisSchedulerFlag struct {
	client *redis.Client
	key    string
}

// NewRedisSchedulerFlag creates a flag stored under "<prefix>:scheduler:enabled".
func NewRedisSchedulerFlag(client *redis.Client, prefix string) *RedisSchedulerFlag {
	return &RedisSchedulerFlag{client: client, key: buildKey(prefix, schedulerFlagKey)}
}

func (f *RedisSchedulerFlag) Enabled(ctx context.Context) (bool, error) {
	val, err := f.client.Get(ctx, f.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read scheduler flag: %w", err)
	}
	return val != "0", nil
}

func (f *RedisSchedulerFlag) SetEnabled(ctx context.Context, enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	if err := f.client.Set(ctx, f.key, val, 0).Err(); err != nil {
		return fmt.Errorf("failed to write scheduler flag: %w", err)
	}
	return nil
}

func buildKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
