// application/bootstrap/builder.go
package bootstrap

import (
	"context"

	"rsi-radar/internal/core/domain/scanner"
	"rsi-radar/internal/delivery/telegram"
	"rsi-radar/internal/infrastructure/api/exchanges/binance"
	"rsi-radar/internal/infrastructure/api/products"
	"rsi-radar/internal/infrastructure/cache"
	rediscache "rsi-radar/internal/infrastructure/cache/redis"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"
)

// components - собранные зависимости приложения
type components struct {
	metrics  *observability.Metrics
	redis    *rediscache.RedisService
	scanner  *scanner.Scanner
	notifier *telegram.Notifier
}

// buildComponents собирает граф зависимостей по конфигурации.
// Недоступный Redis не мешает запуску: кэш остается в памяти.
func buildComponents(ctx context.Context, cfg *config.Config) *components {
	c := &components{metrics: observability.NewMetrics("")}

	var backend cache.Backend
	if cfg.Redis.Enabled {
		c.redis = rediscache.NewRedisService(cfg.Redis)
		if err := c.redis.Start(ctx); err != nil {
			logger.Warn("⚠️ Redis недоступен, кэш только в памяти: %v", err)
			c.redis = nil
		} else {
			backend = c.redis.Cache()
		}
	}

	cacheOpts := []cache.Option{cache.WithMetrics(c.metrics)}
	if backend != nil {
		cacheOpts = append(cacheOpts, cache.WithBackend(backend))
	}
	candles := cache.New[[]float64]("candles", cfg.Cache.CandleTTL, cacheOpts...)
	ranks := cache.New[market.RankMap]("ranks", cfg.Cache.RankTTL, cacheOpts...)

	exchange := binance.NewBinanceClient(cfg.Exchange, cfg.Scanner.QuoteAsset, c.metrics)
	feed := products.NewClient(cfg.Exchange.ProductFeedURL, cfg.Exchange.HTTPTimeout, c.metrics)

	c.scanner = scanner.New(exchange, feed, cfg.Scanner,
		scanner.WithCandleCache(candles),
		scanner.WithRankCache(ranks),
		scanner.WithMetrics(c.metrics),
		scanner.WithProgress(func(done, total int) {
			logger.Debug("📊 Прогресс: %d/%d", done, total)
		}),
	)

	formatter := telegram.NewReportFormatter(
		cfg.Telegram.MaxRows,
		cfg.Telegram.TimezoneOffsetHours,
		cfg.Scanner.StageA.Interval,
		cfg.Scanner.StageB.Interval,
	)
	c.notifier = telegram.NewNotifier(formatter, telegram.NewMessageSender(cfg.Telegram))
	return c
}
