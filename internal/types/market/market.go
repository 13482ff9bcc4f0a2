// internal/types/market/market.go
package market

import (
	"github.com/shopspring/decimal"
)

// TradingPair - торговая пара биржи
type TradingPair struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	Status     string `json:"status"`
}

// StatusTrading - статус пары, открытой для торговли
const StatusTrading = "TRADING"

// Tradable - пара торгуется и котируется в quote
func (p TradingPair) Tradable(quote string) bool {
	return p.Status == StatusTrading && p.QuoteAsset == quote
}

// PairSet - активные пары одного цикла сканирования
type PairSet struct {
	Symbols     []string          `json:"symbols"`
	BaseAssetOf map[string]string `json:"baseAssetOf"`
}

// Add добавляет пару, сохраняя порядок биржи
func (p *PairSet) Add(pair TradingPair) {
	if p.BaseAssetOf == nil {
		p.BaseAssetOf = make(map[string]string)
	}
	p.Symbols = append(p.Symbols, pair.Symbol)
	p.BaseAssetOf[pair.Symbol] = pair.BaseAsset
}

// TickerSnapshot - 24h статистика по символу
type TickerSnapshot struct {
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	PercentChange float64 `json:"percentChange"`
}

// FundingState - ставка финансирования и ее интервал
type FundingState struct {
	Rate          float64 `json:"rate"`
	IntervalHours float64 `json:"intervalHours"`
}

// ProductRankEntry - запись продуктового фида для рейтинга капитализации
type ProductRankEntry struct {
	BaseAsset         string          `json:"baseAsset"`
	QuoteAsset        string          `json:"quoteAsset"`
	Price             decimal.Decimal `json:"price"`
	CirculatingSupply decimal.Decimal `json:"circulatingSupply"`
}

// MarketCap возвращает капитализацию (цена × предложение)
func (e ProductRankEntry) MarketCap() decimal.Decimal {
	return e.Price.Mul(e.CirculatingSupply)
}

// RankMap - базовый актив -> лучший (минимальный) ранг
type RankMap map[string]int
