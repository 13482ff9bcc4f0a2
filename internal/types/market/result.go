// internal/types/market/result.go
package market

import (
	"fmt"
	"strconv"
	"time"
)

const tradeURLBase = "https://www.binance.com/en/futures/"

// ScanResult - одна строка результата сканирования
type ScanResult struct {
	Symbol               string  `json:"symbol"`
	BaseAsset            string  `json:"baseAsset"`
	Price                float64 `json:"price"`
	Volume               float64 `json:"volume"`
	PercentChange        float64 `json:"percentChange"`
	FundingRate          float64 `json:"fundingRate"`
	FundingIntervalHours float64 `json:"fundingIntervalHours"`
	Rank                 *int    `json:"rank"`
	RSIShort             float64 `json:"rsiShort"`
	RSILong              float64 `json:"rsiLong"`
}

// RankLabel возвращает ранг для отображения или "N/A"
func (r ScanResult) RankLabel() string {
	if r.Rank == nil {
		return "N/A"
	}
	return strconv.Itoa(*r.Rank)
}

// AnnualizedFundingPct - годовая ставка финансирования в процентах
func (r ScanResult) AnnualizedFundingPct() float64 {
	if r.FundingIntervalHours <= 0 {
		return 0
	}
	return r.FundingRate * (24 / r.FundingIntervalHours) * 365 * 100
}

// TradeURL - ссылка на фьючерсный терминал
func (r ScanResult) TradeURL() string {
	return tradeURLBase + r.Symbol
}

func (r ScanResult) String() string {
	return fmt.Sprintf("%s rsi=%.1f/%.1f vol=%.0f rank=%s", r.Symbol, r.RSIShort, r.RSILong, r.Volume, r.RankLabel())
}

// ScanReport - итог одного цикла сканирования
type ScanReport struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Total      int          `json:"total"`
	Scanned    int          `json:"scanned"`
	Partial    bool         `json:"partial"`
	Results    []ScanResult `json:"results"`
}

// Duration - длительность цикла
func (r *ScanReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
