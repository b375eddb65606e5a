package repositories

import (
	"context"
	"errors"
	"time"

	"storefront-checkout/pkg/cache"
)

// RedisCartStorage keeps carts in Redis with a sliding TTL.
type RedisCartStorage struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewRedisCartStorage(redisCache *cache.RedisCache, ttl time.Duration) *RedisCartStorage {
	return &RedisCartStorage{
		cache: redisCache,
		ttl:   ttl,
	}
}

func (s *RedisCartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.GetBytes(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *RedisCartStorage) Save(ctx context.Context, key string, data []byte) error {
	return s.cache.SetBytes(ctx, key, data, s.ttl)
}

func (s *RedisCartStorage) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
