package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/market-portal/internal/persistence"
	"github.com/spec-kit/market-portal/internal/session"
)

// RedisSessionCache mirrors session records as JSON values with a sliding TTL.
type RedisSessionCache struct {
	redis *persistence.Redis
	ttl   time.Duration
}

// NewRedisSessionCache returns a Redis-backed session storage. A zero ttl keeps records forever.
func NewRedisSessionCache(r *persistence.Redis, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{redis: r, ttl: ttl}
}

func (c *RedisSessionCache) Load(ctx context.Context, key string) (session.Record, error) {
	data, err := c.redis.Client.Get(ctx, c.redis.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, err
	}
	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, fmt.Errorf("decode session record: %w", err)
	}
	return rec, nil
}

// Save writes token and role as one value so they can never diverge.
func (c *RedisSessionCache) Save(ctx context.Context, key string, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.redis.Client.Set(ctx, c.redis.Key(key), data, c.ttl).Err()
}

func (c *RedisSessionCache) Clear(ctx context.Context, key string) error {
	return c.redis.Client.Del(ctx, c.redis.Key(key)).Err()
}
