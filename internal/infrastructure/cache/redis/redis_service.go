// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped ServiceState = "stopped"
	StateRunning ServiceState = "running"
	StateError   ServiceState = "error"
)

// RedisService - жизненный цикл подключения к Redis
type RedisService struct {
	cfg config.RedisConfig

	mu     sync.RWMutex
	client *redis.Client
	state  ServiceState
}

// NewRedisService создает новый Redis сервис
func NewRedisService(cfg config.RedisConfig) *RedisService {
	return &RedisService{cfg: cfg, state: StateStopped}
}

// Start подключается и проверяет соединение
func (rs *RedisService) Start(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state == StateRunning {
		return fmt.Errorf("redis service already running")
	}

	addr := fmt.Sprintf("%s:%d", rs.cfg.Host, rs.cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: rs.cfg.Password,
		DB:       rs.cfg.DB,
		PoolSize: rs.cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.Info("📡 Connecting to Redis: %s (DB: %d)", addr, rs.cfg.DB)
	if err := NewCacheWithClient(client, rs.cfg.Prefix).Ping(pingCtx); err != nil {
		_ = client.Close()
		rs.state = StateError
		return fmt.Errorf("failed to connect to Redis %s: %w", addr, err)
	}

	rs.client = client
	rs.state = StateRunning
	logger.Info("✅ Redis connected, prefix %q", rs.cfg.Prefix)
	return nil
}

// Stop закрывает клиент
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.client == nil {
		rs.state = StateStopped
		return nil
	}
	err := rs.client.Close()
	rs.client = nil
	rs.state = StateStopped
	if err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	logger.Info("🛑 Redis service stopped")
	return nil
}

// State возвращает состояние сервиса
func (rs *RedisService) State() ServiceState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state
}

// Cache возвращает бэкенд кэша или nil, если сервис не запущен
func (rs *RedisService) Cache() *Cache {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.client == nil {
		return nil
	}
	return NewCacheWithClient(rs.client, rs.cfg.Prefix)
}
