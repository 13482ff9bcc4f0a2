// internal/infrastructure/api/products/client.go
package products

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
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"

	"github.com/shopspring/decimal"
)

const endpointProducts = "/bapi/asset/v2/public/asset-service/product/get-products"

// productResponse - ответ продуктового фида
type productResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    []productEntry `json:"data"`
}

// productEntry - строка фида. cs бывает null у новых активов.
type productEntry struct {
	Symbol            string              `json:"s"`
	Base              string              `json:"b"`
	Quote             string              `json:"q"`
	Close             decimal.NullDecimal `json:"c"`
	CirculatingSupply decimal.NullDecimal `json:"cs"`
}

// Client - клиент фида продуктов (цена и циркулирующее предложение)
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewClient создает клиента продуктового фида
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Products загружает весь фид. При ошибке - пустой список.
func (c *Client) Products(ctx context.Context) api.Result[[]market.ProductRankEntry] {
	var resp productResponse
	if err := c.fetch(ctx, &resp); err != nil {
		return api.Fail([]market.ProductRankEntry{}, err)
	}

	entries := make([]market.ProductRankEntry, 0, len(resp.Data))
	for _, p := range resp.Data {
		if !p.Close.Valid || !p.CirculatingSupply.Valid {
			continue
		}
		entries = append(entries, market.ProductRankEntry{
			BaseAsset:         p.Base,
			QuoteAsset:        p.Quote,
			Price:             p.Close.Decimal,
			CirculatingSupply: p.CirculatingSupply.Decimal,
		})
	}
	return api.OK(entries)
}

func (c *Client) fetch(ctx context.Context, dest *productResponse) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveRequest(endpointProducts, err, time.Since(start)) }()

	params := url.Values{}
	params.Set("includeEtf", "true")
	params.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpointProducts+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &api.StatusError{Endpoint: endpointProducts, Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse products: %w", err)
	}
	if dest.Code != "" && dest.Code != "000000" {
		return fmt.Errorf("product feed error %s: %s", dest.Code, dest.Message)
	}
	return nil
}
