package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "bingo:conn:"

// RedisRegistry shares connection bindings between server instances. Keys
// expire after ttl so bindings of crashed instances do not linger.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

// WithPrefix returns a copy that namespaces keys under prefix.
func (r *RedisRegistry) WithPrefix(prefix string) *RedisRegistry {
	cp := *r
	cp.prefix = prefix
	return &cp
}

func (r *RedisRegistry) key(connID string) string {
	return r.prefix + connID
}

func (r *RedisRegistry) Bind(ctx context.Context, connID, roomID string) error {
	return r.client.Set(ctx, r.key(connID), roomID, r.ttl).Err()
}

func (r *RedisRegistry) Lookup(ctx context.Context, connID string) (string, bool, error) {
	roomID, err := r.client.Get(ctx, r.key(connID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return roomID, true, nil
}

func (r *RedisRegistry) Unbind(ctx context.Context, connID string) error {
	return r.client.Del(ctx, r.key(connID)).Err()
}

func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
