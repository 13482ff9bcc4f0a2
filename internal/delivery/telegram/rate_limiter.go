// internal/delivery/telegram/rate_limiter.go
package telegram

import (
	"context"
	"sync"
	"time"
)

// RateLimiter выдерживает минимальный интервал между отправками
type RateLimiter struct {
	interval time.Duration
	lastSend time.Time
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimiter создает новый ограничитель
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		lastSend: time.Now().Add(-interval), // можно отправлять сразу
		now:      time.Now,
	}
}

// CanSend проверяет, можно ли отправлять сейчас, и резервирует слот
func (rl *RateLimiter) CanSend() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSend) < rl.interval {
		return false
	}
	rl.lastSend = now
	return true
}

// Wait ждет свободного слота или отмены ctx
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := rl.now()
		wait := rl.interval - now.Sub(rl.lastSend)
		if wait <= 0 {
			rl.lastSend = now
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
