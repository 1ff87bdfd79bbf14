package continuity

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/adityarahmanda/kopitera-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// RedisKV adapts the shared Redis client onto the KV port.
type RedisKV struct {
	client *pkgredis.Client
}

// NewRedisKV wraps the provided client.
func NewRedisKV(client *pkgredis.Client) (*RedisKV, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisKV{client: client}, nil
}

func (r *RedisKV) Get(ctx context.Context, sessionKey, name string) (string, error) {
	value, err := r.client.Get(ctx, r.client.ContinuityKey(sessionKey, name))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *RedisKV) Set(ctx context.Context, sessionKey, name, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.client.ContinuityKey(sessionKey, name), value, ttl)
}

func (r *RedisKV) Delete(ctx context.Context, sessionKey, name string) error {
	return r.client.Del(ctx, r.client.ContinuityKey(sessionKey, name))
}
