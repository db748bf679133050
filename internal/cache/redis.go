package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/payment"
	"github.com/redis/go-redis/v9"
)

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisSessionCache) Get(ctx context.Context, key string) (*payment.Session, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var session payment.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}

	return &session, nil
}

// Set keeps the first session stored for a key; later writes are ignored.
func (r *RedisSessionCache) Set(ctx context.Context, key string, session *payment.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	if err := r.client.SetNX(ctx, cacheKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(key string) string {
	return fmt.Sprintf("checkout:idempotency:%s", key)
}
