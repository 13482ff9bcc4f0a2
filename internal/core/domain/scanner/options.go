// internal/core/domain/scanner/options.go
package scanner

import (
	"time"

	"rsi-radar/internal/infrastructure/cache"
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"
)

const (
	defaultCandleTTL = 60 * time.Second
	defaultRankTTL   = time.Hour
)

// ProgressFunc получает число обработанных символов и общее число кандидатов.
// Вызовы сериализованы.
type ProgressFunc func(done, total int)

// Option настраивает Scanner
type Option func(*Scanner)

// WithCandleCache задает кэш рядов закрытия (ключ symbol:interval:limit)
func WithCandleCache(c *cache.TTLCache[[]float64]) Option {
	return func(s *Scanner) {
		if c != nil {
			s.candles = c
		}
	}
}

// WithRankCache задает кэш рейтинга (ключ - котировка)
func WithRankCache(c *cache.TTLCache[market.RankMap]) Option {
	return func(s *Scanner) {
		if c != nil {
			s.ranks = c
		}
	}
}

// WithProgress подписывает на прогресс сканирования
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) { s.progress = fn }
}

// WithMetrics включает метрики
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithClock подменяет часы (длительность цикла, отметки отчета)
func WithClock(c cache.Clock) Option {
	return func(s *Scanner) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator подменяет генератор ID отчетов
func WithIDGenerator(fn func() string) Option {
	return func(s *Scanner) {
		if fn != nil {
			s.newID = fn
		}
	}
}
