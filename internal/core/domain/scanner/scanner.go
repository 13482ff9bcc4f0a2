// internal/core/domain/scanner/scanner.go
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"rsi-radar/internal/core/domain/indicators"
	"rsi-radar/internal/core/domain/rank"
	"rsi-radar/internal/infrastructure/cache"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	stageShort = "short"
	stageLong  = "long"

	outcomePassed   = "passed"
	outcomeRejected = "rejected"
	outcomeNoData   = "no_data"
	outcomePanic    = "panic"
)

// Scanner - оркестратор цикла: метаданные, фильтр, пул воркеров, агрегация
type Scanner struct {
	source   MarketDataSource
	products ProductSource
	cfg      config.ScannerConfig
	resolver *rank.Resolver

	candles  *cache.TTLCache[[]float64]
	ranks    *cache.TTLCache[market.RankMap]
	metrics  *observability.Metrics
	progress ProgressFunc
	clock    cache.Clock
	newID    func() string
	onState  func(State)

	state atomic.Int32

	progressDone  atomic.Int64
	progressTotal atomic.Int64

	mu   sync.RWMutex
	last *market.ScanReport
}

// metadata - результаты стадии FetchingMetadata
type metadata struct {
	pairs     market.PairSet
	stats     map[string]market.TickerSnapshot
	rates     map[string]float64
	intervals map[string]float64
	ranks     market.RankMap
}

// funding собирает состояние фандинга символа; интервал по умолчанию,
// если биржа не перечисляет символ в fundingInfo
func (md *metadata) funding(symbol string, defaultInterval float64) market.FundingState {
	interval, listed := md.intervals[symbol]
	if !listed || interval <= 0 {
		interval = defaultInterval
	}
	return market.FundingState{Rate: md.rates[symbol], IntervalHours: interval}
}

// candidate - символ после фильтра
type candidate struct {
	symbol string
	ticker market.TickerSnapshot
}

// New создает сканер. products может быть nil: тогда ранги не определяются.
func New(source MarketDataSource, products ProductSource, cfg config.ScannerConfig, opts ...Option) *Scanner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.ProgressEvery < 1 {
		cfg.ProgressEvery = 1
	}
	if cfg.DefaultFundingIntervalHours <= 0 {
		cfg.DefaultFundingIntervalHours = 8
	}

	s := &Scanner{
		source:   source,
		products: products,
		cfg:      cfg,
		resolver: rank.NewResolver(cfg.QuoteAsset, cfg.LeveragedPrefixes),
		clock:    cache.SystemClock,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.candles == nil {
		s.candles = cache.New[[]float64]("candles", defaultCandleTTL, cache.WithClock(s.clock), cache.WithMetrics(s.metrics))
	}
	if s.ranks == nil {
		s.ranks = cache.New[market.RankMap]("ranks", defaultRankTTL, cache.WithClock(s.clock), cache.WithMetrics(s.metrics))
	}
	return s
}

// State возвращает текущую стадию цикла
func (s *Scanner) State() State {
	return State(s.state.Load())
}

// LastReport - отчет последнего завершенного цикла или nil
func (s *Scanner) LastReport() *market.ScanReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Progress - последний сообщенный прогресс текущего (или последнего) цикла
func (s *Scanner) Progress() (done, total int) {
	return int(s.progressDone.Load()), int(s.progressTotal.Load())
}

func (s *Scanner) setState(st State) {
	s.state.Store(int32(st))
	if s.onState != nil {
		s.onState(st)
	}
}

// Run выполняет один цикл сканирования.
// Сбои отдельных запросов не прерывают цикл; отмена ctx останавливает выдачу
// символов воркерам, и отчет помечается как Partial.
func (s *Scanner) Run(ctx context.Context) (report *market.ScanReport, err error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateFetchingMetadata)) {
		return nil, ErrScanInProgress
	}
	defer s.setState(StateIdle)

	id := s.newID()
	started := s.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan cycle %s: panic: %v", id, r)
		}
		if err != nil {
			report = nil
			logger.Error("❌ %v", err)
			s.metrics.CycleFinished("error", s.clock.Now().Sub(started), 0)
			s.setState(StateDone)
		}
	}()

	logger.Info("🔄 Scan %s started", id)
	s.progressDone.Store(0)
	s.progressTotal.Store(0)

	md, err := s.fetchMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan cycle %s: %w", id, err)
	}

	s.setState(StateFiltering)
	candidates := s.filter(md)

	s.setState(StateScanning)
	logger.Info("🔍 Scanning %d of %d pairs with concurrency %d",
		len(candidates), len(md.pairs.Symbols), min(s.cfg.Concurrency, len(candidates)))
	results, scanned := s.scan(ctx, candidates, md)

	s.setState(StateAggregating)
	sortByVolume(results)

	report = &market.ScanReport{
		ID:         id,
		StartedAt:  started,
		FinishedAt: s.clock.Now(),
		Total:      len(candidates),
		Scanned:    scanned,
		Partial:    scanned < len(candidates),
		Results:    results,
	}

	status := "ok"
	if report.Partial {
		status = "partial"
		logger.Warn("⚠️ Scan %s interrupted: %d/%d scanned (%v)", id, scanned, len(candidates), ctx.Err())
	}
	s.metrics.CycleFinished(status, report.Duration(), len(results))
	logger.Info("✅ Scan %s complete in %.1fs. Found %d matches.", id, report.Duration().Seconds(), len(results))

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.setState(StateDone)
	return report, nil
}

// fetchMetadata запускает все независимые запросы параллельно и ждет каждый.
// Ошибка возвращается только при панике внутри запроса.
func (s *Scanner) fetchMetadata(ctx context.Context) (*metadata, error) {
	md := &metadata{}
	var g errgroup.Group

	g.Go(guard("exchange info", func() {
		res := s.source.ActivePairs(ctx)
		warnOnFailure("exchange info", res.Err)
		md.pairs = res.Value
	}))
	g.Go(guard("24h stats", func() {
		res := s.source.Stats24h(ctx)
		warnOnFailure("24h stats", res.Err)
		md.stats = res.Value
	}))
	g.Go(guard("funding rates", func() {
		res := s.source.FundingRates(ctx)
		warnOnFailure("funding rates", res.Err)
		md.rates = res.Value
	}))
	g.Go(guard("funding intervals", func() {
		res := s.source.FundingIntervals(ctx)
		warnOnFailure("funding intervals", res.Err)
		md.intervals = res.Value
	}))
	g.Go(guard("rank map", func() {
		md.ranks = s.rankMap(ctx)
	}))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return md, nil
}

// guard переводит панику запроса метаданных в ошибку errgroup
func guard(what string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("fetch %s: panic: %v", what, r)
			}
		}()
		fn()
		return nil
	}
}

// rankMap берет рейтинг из кэша или строит его по продуктовому фиду
func (s *Scanner) rankMap(ctx context.Context) market.RankMap {
	if s.products == nil {
		return market.RankMap{}
	}
	return s.ranks.GetOrLoad(ctx, s.cfg.QuoteAsset, func(ctx context.Context) (market.RankMap, bool) {
		res := s.products.Products(ctx)
		warnOnFailure("product feed", res.Err)
		ranks := s.resolver.BuildRankMap(res.Value)
		return ranks, !res.Failed() && len(ranks) > 0
	})
}

// filter отбрасывает символы с объемом ниже порога и сортирует по изменению за 24h
func (s *Scanner) filter(md *metadata) []candidate {
	candidates := make([]candidate, 0, len(md.pairs.Symbols))
	for _, symbol := range md.pairs.Symbols {
		ticker := md.stats[symbol]
		if ticker.Volume < s.cfg.MinVolume {
			continue
		}
		candidates = append(candidates, candidate{symbol: symbol, ticker: ticker})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ticker.PercentChange > candidates[j].ticker.PercentChange
	})
	return candidates
}

// scan - пул воркеров над общим атомарным курсором
func (s *Scanner) scan(ctx context.Context, candidates []candidate, md *metadata) ([]market.ScanResult, int) {
	total := len(candidates)
	workers := min(s.cfg.Concurrency, total)

	var (
		cursor  atomic.Int64
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]market.ScanResult, 0)
		tracker = progressTracker{fn: s.reportProgress, every: s.cfg.ProgressEvery, total: total}
	)
	s.progressTotal.Store(int64(total))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				i := int(cursor.Add(1) - 1)
				if i >= total {
					return
				}
				if res, ok := s.evaluate(ctx, candidates[i], md); ok {
					mu.Lock()
					results = append(results, res)
					mu.Unlock()
				}
				s.metrics.SymbolScanned()
				tracker.step()
			}
		}()
	}
	wg.Wait()

	return results, tracker.finish()
}

// reportProgress сохраняет прогресс для State API и передает подписчику
func (s *Scanner) reportProgress(done, total int) {
	s.progressDone.Store(int64(done))
	s.progressTotal.Store(int64(total))
	if s.progress != nil {
		s.progress(done, total)
	}
}

// evaluate - двухэтапная проверка символа с ранним выходом после этапа A
func (s *Scanner) evaluate(ctx context.Context, c candidate, md *metadata) (res market.ScanResult, ok bool) {
	current := stageShort
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("⚠️ %s: evaluation panic at %s stage: %v", c.symbol, current, r)
			s.metrics.StageOutcome(current, outcomePanic)
			res, ok = market.ScanResult{}, false
		}
	}()

	rsiShort, passed := s.stage(ctx, c.symbol, stageShort, s.cfg.StageA)
	if !passed {
		return market.ScanResult{}, false
	}
	current = stageLong
	rsiLong, passed := s.stage(ctx, c.symbol, stageLong, s.cfg.StageB)
	if !passed {
		return market.ScanResult{}, false
	}

	funding := md.funding(c.symbol, s.cfg.DefaultFundingIntervalHours)

	res = market.ScanResult{
		Symbol:               c.symbol,
		BaseAsset:            s.resolver.BaseAsset(c.symbol, md.pairs.BaseAssetOf),
		Price:                c.ticker.Price,
		Volume:               c.ticker.Volume,
		PercentChange:        c.ticker.PercentChange,
		FundingRate:          funding.Rate,
		FundingIntervalHours: funding.IntervalHours,
		RSIShort:             rsiShort,
		RSILong:              rsiLong,
	}
	if r, found := s.resolver.Resolve(c.symbol, md.pairs.BaseAssetOf, md.ranks); found {
		res.Rank = &r
	}

	logger.Match(c.symbol, rsiShort, rsiLong, c.ticker.Volume)
	return res, true
}

// stage считает RSI по ряду закрытия одного интервала и сравнивает с порогом
func (s *Scanner) stage(ctx context.Context, symbol, name string, st config.StageConfig) (float64, bool) {
	key := symbol + ":" + st.Interval + ":" + strconv.Itoa(s.cfg.CandleLookback)
	closes := s.candles.GetOrLoad(ctx, key, func(ctx context.Context) ([]float64, bool) {
		res := s.source.CloseSeries(ctx, symbol, st.Interval, s.cfg.CandleLookback)
		if res.Err != nil {
			logger.Debug("⚠️ %s %s klines: %v", symbol, st.Interval, res.Err)
		}
		return res.Value, !res.Failed() && len(res.Value) > 0
	})

	rsi := indicators.RSI(closes, st.Period)
	switch {
	case rsi == 0 && len(closes) <= st.Period:
		s.metrics.StageOutcome(name, outcomeNoData)
		return rsi, false
	case !indicators.Qualifies(rsi, st.Threshold):
		s.metrics.StageOutcome(name, outcomeRejected)
		return rsi, false
	}
	s.metrics.StageOutcome(name, outcomePassed)
	return rsi, true
}

// sortByVolume - объем по убыванию, при равенстве символ по алфавиту
func sortByVolume(results []market.ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Volume != results[j].Volume {
			return results[i].Volume > results[j].Volume
		}
		return results[i].Symbol < results[j].Symbol
	})
}

func warnOnFailure(what string, err error) {
	if err != nil {
		logger.Warn("⚠️ Failed to fetch %s: %v", what, err)
	}
}

// progressTracker считает обработанные символы и сообщает прогресс
// каждые every символов и в конце
type progressTracker struct {
	fn    ProgressFunc
	every int
	total int

	mu       sync.Mutex
	done     int
	reported int
}

func (p *progressTracker) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.done%p.every == 0 || p.done == p.total {
		p.report()
	}
}

func (p *progressTracker) finish() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reported != p.done || p.total == 0 {
		p.report()
	}
	return p.done
}

func (p *progressTracker) report() {
	p.reported = p.done
	if p.fn != nil {
		p.fn(p.done, p.total)
	}
}
