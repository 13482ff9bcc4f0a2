// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rsi-radar/internal/infrastructure/cache"

	"github.com/go-redis/redis/v8"
)

// Cache - JSON хранилище поверх Redis, реализует cache.Backend
type Cache struct {
	client *redis.Client
	prefix string
}

var _ cache.Backend = (*Cache)(nil)

// NewCacheWithClient создает Cache с существующим клиентом
func NewCacheWithClient(client *redis.Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Set сохраняет значение как JSON с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Get читает JSON значение. Отсутствующий ключ - cache.ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.ErrMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// битая запись не должна отдаваться повторно
		_ = c.Delete(ctx, key)
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Ping проверяет соединение
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
