// internal/core/domain/rank/resolver.go
package rank

import (
	"sort"
	"strings"

	"rsi-radar/internal/types/market"
)

// Resolver - сопоставляет символы биржи с рейтингом по капитализации
type Resolver struct {
	quote    string
	prefixes []string
}

// NewResolver создает резолвер. Префиксы плечевых/ребейзнутых токенов
// (1000PEPE, 1MBABYDOGE) проверяются от самого длинного.
func NewResolver(quote string, prefixes []string) *Resolver {
	sorted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return &Resolver{quote: quote, prefixes: sorted}
}

// BuildRankMap строит рейтинг: капитализация по убыванию, ранг = позиция с 1.
// Для повторяющегося базового актива остается первый (самый крупный) ранг.
func (r *Resolver) BuildRankMap(entries []market.ProductRankEntry) market.RankMap {
	return BuildRankMap(entries, r.quote)
}

// BuildRankMap - то же без резолвера
func BuildRankMap(entries []market.ProductRankEntry, quote string) market.RankMap {
	eligible := make([]market.ProductRankEntry, 0, len(entries))
	for _, e := range entries {
		if e.QuoteAsset != quote || !e.Price.IsPositive() || !e.CirculatingSupply.IsPositive() {
			continue
		}
		eligible = append(eligible, e)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].MarketCap().GreaterThan(eligible[j].MarketCap())
	})

	ranks := make(market.RankMap, len(eligible))
	for i, e := range eligible {
		if _, seen := ranks[e.BaseAsset]; seen {
			continue
		}
		ranks[e.BaseAsset] = i + 1
	}
	return ranks
}

// BaseAsset возвращает базовый актив символа: из метаданных биржи,
// иначе символ без суффикса котировки
func (r *Resolver) BaseAsset(symbol string, baseAssetOf map[string]string) string {
	if base, ok := baseAssetOf[symbol]; ok && base != "" {
		return base
	}
	return strings.TrimSuffix(symbol, r.quote)
}

// Resolve ищет ранг символа; false - ранг неизвестен
func (r *Resolver) Resolve(symbol string, baseAssetOf map[string]string, ranks market.RankMap) (int, bool) {
	base := r.BaseAsset(symbol, baseAssetOf)
	if rank, ok := ranks[base]; ok {
		return rank, true
	}
	for _, prefix := range r.prefixes {
		rest, found := strings.CutPrefix(base, prefix)
		if !found || rest == "" {
			continue
		}
		if rank, ok := ranks[rest]; ok {
			return rank, true
		}
		// самый длинный совпавший префикс решает
		return 0, false
	}
	return 0, false
}
