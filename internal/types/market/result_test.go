package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestScanResult_RankLabel(t *testing.T) {
	rank := 7
	assert.Equal(t, "7", ScanResult{Rank: &rank}.RankLabel())
	assert.Equal(t, "N/A", ScanResult{}.RankLabel())
}

func TestScanResult_AnnualizedFundingPct(t *testing.T) {
	r := ScanResult{FundingRate: 0.0001, FundingIntervalHours: 8}
	assert.InDelta(t, 10.95, r.AnnualizedFundingPct(), 1e-9)

	r.FundingIntervalHours = 4
	assert.InDelta(t, 21.9, r.AnnualizedFundingPct(), 1e-9)

	r.FundingIntervalHours = 0
	assert.Zero(t, r.AnnualizedFundingPct())
}

func TestScanResult_TradeURL(t *testing.T) {
	assert.Equal(t, "https://www.binance.com/en/futures/BTCUSDT", ScanResult{Symbol: "BTCUSDT"}.TradeURL())
}

func TestProductRankEntry_MarketCap(t *testing.T) {
	e := ProductRankEntry{
		Price:             decimal.RequireFromString("0.5"),
		CirculatingSupply: decimal.NewFromInt(1_000_000),
	}
	assert.True(t, e.MarketCap().Equal(decimal.NewFromInt(500_000)))
}
