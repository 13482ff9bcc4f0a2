package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rsi-radar/internal/infrastructure/api"
	"rsi-radar/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *BinanceClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewBinanceClient(config.ExchangeConfig{
		FuturesURL:        srv.URL,
		HTTPTimeout:       2 * time.Second,
		RequestsPerSecond: 1000,
		RequestBurst:      10,
	}, "USDT", nil)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestActivePairs_FiltersQuoteAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointExchangeInfo, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1700000000000", r.URL.Query().Get("_t"))
		writeJSON(w, map[string]any{"symbols": []map[string]any{
			{"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"},
			{"symbol": "1000PEPEUSDT", "status": "TRADING", "baseAsset": "1000PEPE", "quoteAsset": "USDT"},
			{"symbol": "ETHUSDC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "USDC"},
			{"symbol": "OLDUSDT", "status": "SETTLING", "baseAsset": "OLD", "quoteAsset": "USDT"},
		}})
	})
	c := newTestClient(t, mux)

	res := c.ActivePairs(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"BTCUSDT", "1000PEPEUSDT"}, res.Value.Symbols)
	assert.Equal(t, map[string]string{"BTCUSDT": "BTC", "1000PEPEUSDT": "1000PEPE"}, res.Value.BaseAssetOf)
}

func TestActivePairs_FailSoft(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointExchangeInfo, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	c := newTestClient(t, mux)

	res := c.ActivePairs(context.Background())
	require.Error(t, res.Err)
	var statusErr *api.StatusError
	require.ErrorAs(t, res.Err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Empty(t, res.Value.Symbols)
	assert.NotNil(t, res.Value.BaseAssetOf)
}

func TestStats24h_ParsesStrings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointTicker24h, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"symbol": "BTCUSDT", "lastPrice": "63100.50", "quoteVolume": "25000000.00", "priceChangePercent": "-1.25"},
			{"symbol": "BROKEN", "lastPrice": "n/a", "quoteVolume": "", "priceChangePercent": "3"},
		})
	})
	c := newTestClient(t, mux)

	res := c.Stats24h(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 63100.50, res.Value["BTCUSDT"].Price)
	assert.Equal(t, 25_000_000.0, res.Value["BTCUSDT"].Volume)
	assert.Equal(t, -1.25, res.Value["BTCUSDT"].PercentChange)
	assert.Zero(t, res.Value["BROKEN"].Price)
	assert.Equal(t, 3.0, res.Value["BROKEN"].PercentChange)
}

func TestStats24h_BadJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointTicker24h, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	})
	c := newTestClient(t, mux)

	res := c.Stats24h(context.Background())
	assert.Error(t, res.Err)
	assert.Empty(t, res.Value)
}

func TestFundingRatesAndIntervals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointPremiumIndex, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"symbol": "BTCUSDT", "lastFundingRate": "0.00010000"},
			{"symbol": "XYZUSDT", "lastFundingRate": "-0.00250000"},
		})
	})
	mux.HandleFunc(endpointFundingInfo, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"symbol": "XYZUSDT", "fundingIntervalHours": 4},
			{"symbol": "ZEROUSDT", "fundingIntervalHours": 0},
		})
	})
	c := newTestClient(t, mux)

	rates := c.FundingRates(context.Background())
	require.NoError(t, rates.Err)
	assert.Equal(t, map[string]float64{"BTCUSDT": 0.0001, "XYZUSDT": -0.0025}, rates.Value)

	intervals := c.FundingIntervals(context.Background())
	require.NoError(t, intervals.Err)
	assert.Equal(t, map[string]float64{"XYZUSDT": 4}, intervals.Value)
}

func TestCloseSeries_ExtractsCloses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointKlines, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "1h", q.Get("interval"))
		assert.Equal(t, "35", q.Get("limit"))
		assert.NotEmpty(t, q.Get("_t"))
		writeJSON(w, [][]any{
			{1700000000000, "100.0", "101.0", "99.0", "100.5", "10"},
			{1700003600000, "100.5", "102.0", "100.0", "101.5", "12"},
			{1700007200000, "101.5", "103.0", "101.0", "102.25", "9"},
		})
	})
	c := newTestClient(t, mux)

	res := c.CloseSeries(context.Background(), "BTCUSDT", "1h", 35)
	require.NoError(t, res.Err)
	assert.Equal(t, []float64{100.5, 101.5, 102.25}, res.Value)
}

func TestCloseSeries_MalformedRowFailsWholeSeries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointKlines, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, [][]any{
			{1700000000000, "100.0", "101.0", "99.0", "100.5", "10"},
			{1700003600000, "100.5"},
		})
	})
	c := newTestClient(t, mux)

	res := c.CloseSeries(context.Background(), "BTCUSDT", "1h", 35)
	assert.Error(t, res.Err)
	assert.Empty(t, res.Value)
}

func TestCloseSeries_CancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointKlines, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, [][]any{})
	})
	c := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.CloseSeries(ctx, "BTCUSDT", "1h", 35)
	assert.Error(t, res.Err)
	assert.Empty(t, res.Value)
}
