package mw

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "portal:cache:"

// RedisCache shares cached responses across BFF instances.
type RedisCache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("Redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		r.log.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (r *RedisCache) Set(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		r.log.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		r.log.Warn("Redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("Redis cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("Redis cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
