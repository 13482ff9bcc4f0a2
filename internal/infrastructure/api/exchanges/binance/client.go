// internal/infrastructure/api/exchanges/binance/client.go
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rsi-radar/internal/infrastructure/api"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// BinanceClient - клиент публичного REST API Binance Futures.
// Все методы fail-soft: при любой ошибке возвращается пустое значение и причина в Result.Err.
type BinanceClient struct {
	httpClient *http.Client
	baseURL    string
	quoteAsset string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewBinanceClient создает клиента с token bucket лимитером из конфигурации
func NewBinanceClient(cfg config.ExchangeConfig, quoteAsset string, metrics *observability.Metrics) *BinanceClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	burst := cfg.RequestBurst
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &BinanceClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        burst,
				MaxIdleConnsPerHost: burst,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    cfg.FuturesURL,
		quoteAsset: quoteAsset,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    metrics,
		now:        time.Now,
	}
}

// ActivePairs получает пары в целевой котировке со статусом TRADING
func (c *BinanceClient) ActivePairs(ctx context.Context) api.Result[market.PairSet] {
	empty := market.PairSet{Symbols: []string{}, BaseAssetOf: map[string]string{}}

	var info exchangeInfoResponse
	if err := c.makeRequest(ctx, endpointExchangeInfo, nil, &info); err != nil {
		return api.Fail(empty, err)
	}

	pairs := market.PairSet{
		Symbols:     make([]string, 0, len(info.Symbols)),
		BaseAssetOf: make(map[string]string, len(info.Symbols)),
	}
	for _, s := range info.Symbols {
		pair := market.TradingPair{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			Status:     s.Status,
		}
		if pair.Tradable(c.quoteAsset) {
			pairs.Add(pair)
		}
	}
	return api.OK(pairs)
}

// Stats24h получает 24h статистику по всем символам одним запросом
func (c *BinanceClient) Stats24h(ctx context.Context) api.Result[map[string]market.TickerSnapshot] {
	var tickers []ticker24hResponse
	if err := c.makeRequest(ctx, endpointTicker24h, nil, &tickers); err != nil {
		return api.Fail(map[string]market.TickerSnapshot{}, err)
	}

	stats := make(map[string]market.TickerSnapshot, len(tickers))
	for _, t := range tickers {
		stats[t.Symbol] = market.TickerSnapshot{
			Price:         parseNumber(t.LastPrice),
			Volume:        parseNumber(t.QuoteVolume),
			PercentChange: parseNumber(t.PriceChangePercent),
		}
	}
	return api.OK(stats)
}

// FundingRates получает последние ставки финансирования
func (c *BinanceClient) FundingRates(ctx context.Context) api.Result[map[string]float64] {
	var items []premiumIndexResponse
	if err := c.makeRequest(ctx, endpointPremiumIndex, nil, &items); err != nil {
		return api.Fail(map[string]float64{}, err)
	}

	rates := make(map[string]float64, len(items))
	for _, item := range items {
		rates[item.Symbol] = parseNumber(item.LastFundingRate)
	}
	return api.OK(rates)
}

// FundingIntervals получает интервалы финансирования в часах
func (c *BinanceClient) FundingIntervals(ctx context.Context) api.Result[map[string]float64] {
	var items []fundingInfoResponse
	if err := c.makeRequest(ctx, endpointFundingInfo, nil, &items); err != nil {
		return api.Fail(map[string]float64{}, err)
	}

	intervals := make(map[string]float64, len(items))
	for _, item := range items {
		if item.FundingIntervalHours > 0 {
			intervals[item.Symbol] = item.FundingIntervalHours
		}
	}
	return api.OK(intervals)
}

// CloseSeries получает цены закрытия свечей в хронологическом порядке.
// Серия не бывает частичной: битая строка делает весь ответ неуспешным.
func (c *BinanceClient) CloseSeries(ctx context.Context, symbol, interval string, limit int) api.Result[[]float64] {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var rows [][]interface{}
	if err := c.makeRequest(ctx, endpointKlines, params, &rows); err != nil {
		return api.Fail([]float64{}, err)
	}

	closes := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) <= klineCloseIndex {
			return api.Fail([]float64{}, fmt.Errorf("%s %s: kline %d has %d fields", symbol, interval, i, len(row)))
		}
		raw, ok := row[klineCloseIndex].(string)
		if !ok {
			return api.Fail([]float64{}, fmt.Errorf("%s %s: kline %d close is %T", symbol, interval, i, row[klineCloseIndex]))
		}
		closePrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api.Fail([]float64{}, fmt.Errorf("%s %s: kline %d close: %w", symbol, interval, i, err))
		}
		closes = append(closes, closePrice)
	}
	return api.OK(closes)
}

// makeRequest выполняет GET запрос с анти-кэш параметром и декодирует JSON
func (c *BinanceClient) makeRequest(ctx context.Context, endpoint string, params url.Values, dest interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(endpoint, err, time.Since(start))
		if err != nil {
			logger.Debug("⚠️ Binance %s: %v", endpoint, err)
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "RSIRadar/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &api.StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}

// parseNumber разбирает числовую строку API; пустая или битая строка дает 0
func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
