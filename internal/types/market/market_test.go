package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradingPair_Tradable(t *testing.T) {
	assert.True(t, TradingPair{Symbol: "BTCUSDT", QuoteAsset: "USDT", Status: StatusTrading}.Tradable("USDT"))
	assert.False(t, TradingPair{Symbol: "ETHUSDC", QuoteAsset: "USDC", Status: StatusTrading}.Tradable("USDT"))
	assert.False(t, TradingPair{Symbol: "OLDUSDT", QuoteAsset: "USDT", Status: "SETTLING"}.Tradable("USDT"))
}

func TestPairSet_AddKeepsOrder(t *testing.T) {
	var set PairSet
	set.Add(TradingPair{Symbol: "SOLUSDT", BaseAsset: "SOL"})
	set.Add(TradingPair{Symbol: "1000PEPEUSDT", BaseAsset: "1000PEPE"})

	assert.Equal(t, []string{"SOLUSDT", "1000PEPEUSDT"}, set.Symbols)
	assert.Equal(t, map[string]string{"SOLUSDT": "SOL", "1000PEPEUSDT": "1000PEPE"}, set.BaseAssetOf)
}
