package cache

import (
	"context"

	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const invalidateChannel = "cache.invalidate"

// RedisInvalidator drops cached tag keys and broadcasts the tags on a pub/sub
// channel for the edge layer. Callers treat failures as non-fatal.
type RedisInvalidator struct {
	rdb *redis.Client
}

func NewRedisInvalidator(rdb *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{rdb: rdb}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for _, tag := range tags {
		pipe.Del(ctx, "cache:tag:"+tag)
		pipe.Publish(ctx, invalidateChannel, tag)
	}
	_, err := pipe.Exec(ctx)
	return err
}

var _ usecase.CacheInvalidator = (*RedisInvalidator)(nil)
