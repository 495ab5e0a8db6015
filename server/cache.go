package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps rendered radar trees for a short TTL, so a page of
// clients refreshing the same origin does not redo the search.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisCache(addr, password string, db int, ttl time.Duration, log *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log.With("component", "cache"),
	}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) []byte {
	val, err := c.client.Get(ctx, "radar:"+key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.log.Error("cache get failed", "key", key, "err", err)
		return nil
	}
	return val
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, "radar:"+key, value, c.ttl).Err(); err != nil {
		c.log.Error("cache set failed", "key", key, "err", err)
	}
}
