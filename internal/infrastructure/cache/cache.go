// internal/infrastructure/cache/cache.go
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"rsi-radar/internal/observability"
	"rsi-radar/pkg/logger"
)

// ErrMiss - бэкенд не содержит ключа
var ErrMiss = errors.New("cache: miss")

// Clock - источник времени (подменяется в тестах)
type Clock interface {
	Now() time.Time
}

// ClockFunc адаптирует функцию к Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock - реальное время
var SystemClock Clock = ClockFunc(time.Now)

// Backend - внешнее хранилище (Redis). Ошибки бэкенда не ломают кэш.
type Backend interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// storedValue - значение с моментом сохранения
type storedValue[V any] struct {
	Value    V         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

type settings struct {
	clock   Clock
	backend Backend
	metrics *observability.Metrics
}

// Option настраивает кэш
type Option func(*settings)

// WithClock подменяет часы
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithBackend включает сквозную запись во внешний бэкенд
func WithBackend(b Backend) Option {
	return func(s *settings) { s.backend = b }
}

// WithMetrics включает счетчики попаданий
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// TTLCache - ключевой кэш с TTL на весь набор данных.
// Устаревание проверяется лениво при чтении, проактивной очистки нет.
type TTLCache[V any] struct {
	name string
	ttl  time.Duration
	settings

	mu    sync.RWMutex
	items map[string]storedValue[V]
}

// New создает кэш с именем (для ключей бэкенда и метрик) и TTL
func New[V any](name string, ttl time.Duration, opts ...Option) *TTLCache[V] {
	s := settings{clock: SystemClock}
	for _, opt := range opts {
		opt(&s)
	}
	return &TTLCache[V]{
		name:     name,
		ttl:      ttl,
		settings: s,
		items:    make(map[string]storedValue[V]),
	}
}

func (c *TTLCache[V]) fresh(storedAt time.Time) bool {
	return c.clock.Now().Sub(storedAt) < c.ttl
}

// Get возвращает значение, если оно моложе TTL
func (c *TTLCache[V]) Get(ctx context.Context, key string) (V, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if ok && c.fresh(item.StoredAt) {
		c.metrics.CacheLookup(c.name, true)
		return item.Value, true
	}

	if c.backend != nil {
		var remote storedValue[V]
		err := c.backend.Get(ctx, c.backendKey(key), &remote)
		switch {
		case err == nil && c.fresh(remote.StoredAt):
			c.mu.Lock()
			c.items[key] = remote
			c.mu.Unlock()
			c.metrics.CacheLookup(c.name, true)
			return remote.Value, true
		case err != nil && !errors.Is(err, ErrMiss):
			logger.Warn("⚠️ Cache %s: backend read %s: %v", c.name, key, err)
		}
	}

	c.metrics.CacheLookup(c.name, false)
	var zero V
	return zero, false
}

// Put сохраняет значение целиком, перезаписывая предыдущее
func (c *TTLCache[V]) Put(ctx context.Context, key string, value V, storedAt time.Time) {
	item := storedValue[V]{Value: value, StoredAt: storedAt}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()

	if c.backend == nil {
		return
	}
	remaining := c.ttl - c.clock.Now().Sub(storedAt)
	if remaining <= 0 {
		return
	}
	if err := c.backend.Set(ctx, c.backendKey(key), item, remaining); err != nil {
		logger.Warn("⚠️ Cache %s: backend write %s: %v", c.name, key, err)
	}
}

// GetOrLoad возвращает свежее значение или вызывает loader.
// Если loader вернул ok=false, значение не сохраняется и следующий вызов повторит загрузку.
func (c *TTLCache[V]) GetOrLoad(ctx context.Context, key string, loader func(ctx context.Context) (V, bool)) V {
	if v, ok := c.Get(ctx, key); ok {
		return v
	}
	v, ok := loader(ctx)
	if ok {
		c.Put(ctx, key, v, c.clock.Now())
	}
	return v
}

// Len - количество ключей в памяти (включая устаревшие)
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTLCache[V]) backendKey(key string) string {
	return c.name + ":" + key
}
