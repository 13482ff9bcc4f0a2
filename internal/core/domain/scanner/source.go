// internal/core/domain/scanner/source.go
package scanner

import (
	"context"

	"rsi-radar/internal/infrastructure/api"
	"rsi-radar/internal/types/market"
)

// MarketDataSource - данные фьючерсной биржи. Каждый вызов fail-soft:
// Value пригоден к использованию даже при Err != nil.
type MarketDataSource interface {
	ActivePairs(ctx context.Context) api.Result[market.PairSet]
	Stats24h(ctx context.Context) api.Result[map[string]market.TickerSnapshot]
	FundingRates(ctx context.Context) api.Result[map[string]float64]
	FundingIntervals(ctx context.Context) api.Result[map[string]float64]
	CloseSeries(ctx context.Context, symbol, interval string, limit int) api.Result[[]float64]
}

// ProductSource - продуктовый фид для рейтинга капитализации
type ProductSource interface {
	Products(ctx context.Context) api.Result[[]market.ProductRankEntry]
}
