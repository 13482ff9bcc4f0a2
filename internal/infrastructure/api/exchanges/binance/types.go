// internal/infrastructure/api/exchanges/binance/types.go
package binance

// Эндпоинты USDT-M фьючерсов
const (
	endpointExchangeInfo = "/fapi/v1/exchangeInfo"
	endpointTicker24h    = "/fapi/v1/ticker/24hr"
	endpointPremiumIndex = "/fapi/v1/premiumIndex"
	endpointFundingInfo  = "/fapi/v1/fundingInfo"
	endpointKlines       = "/fapi/v1/klines"

	// индекс цены закрытия в строке kline
	klineCloseIndex = 4
)

// exchangeInfoResponse - ответ /exchangeInfo (только нужные поля)
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// ticker24hResponse - элемент ответа /ticker/24hr
type ticker24hResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	QuoteVolume        string `json:"quoteVolume"`
	PriceChangePercent string `json:"priceChangePercent"`
}

// premiumIndexResponse - элемент ответа /premiumIndex
type premiumIndexResponse struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
}

// fundingInfoResponse - элемент ответа /fundingInfo.
// Биржа перечисляет только символы с нестандартным интервалом.
type fundingInfoResponse struct {
	Symbol               string  `json:"symbol"`
	FundingIntervalHours float64 `json:"fundingIntervalHours"`
}
