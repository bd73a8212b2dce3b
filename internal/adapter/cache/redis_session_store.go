package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// lockTTL bounds the per-reference creation lock so a settle that died
// mid-flight can be retried on a later poll.
const lockTTL = 30 * time.Second

// RedisSessionStore keeps the pending-order payload captured at payment
// initiation, keyed by provider reference, plus the one-shot creation lock.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) SavePayload(ctx context.Context, ref string, p *usecase.PendingOrder) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending order: %w", err)
	}
	return s.rdb.Set(ctx, "checkout:payload:"+ref, b, s.ttl).Err()
}

func (s *RedisSessionStore) LoadPayload(ctx context.Context, ref string) (*usecase.PendingOrder, error) {
	b, err := s.rdb.Get(ctx, "checkout:payload:"+ref).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p usecase.PendingOrder
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending order: %w", err)
	}
	return &p, nil
}

func (s *RedisSessionStore) TryCreateLock(ctx context.Context, ref string) (bool, error) {
	return s.rdb.SetNX(ctx, "checkout:create:"+ref, "1", lockTTL).Result()
}

var _ usecase.CheckoutSessionStore = (*RedisSessionStore)(nil)
