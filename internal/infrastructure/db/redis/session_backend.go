package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionBackend keeps each device session as a Redis hash.
type SessionBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionBackend wraps client. A ttl of zero keeps sessions until cleared.
func NewSessionBackend(client *redis.Client, ttl time.Duration) *SessionBackend {
	return &SessionBackend{client: client, ttl: ttl}
}

// ReplaceAll drops the hash at key and writes fields in one MULTI/EXEC.
func (b *SessionBackend) ReplaceAll(ctx context.Context, key string, fields map[string]string) error {
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		if b.ttl > 0 {
			pipe.Expire(ctx, key, b.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	return nil
}

// GetAll returns every field at key; a missing key yields an empty map.
func (b *SessionBackend) GetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := b.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("session read: %w", err)
	}
	return fields, nil
}

func (b *SessionBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
