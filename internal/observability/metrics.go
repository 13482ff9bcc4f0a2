// internal/observability/metrics.go
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - метрики Prometheus приложения.
// Методы допускают nil получатель: компоненты работают и без метрик.
type Metrics struct {
	registry *prometheus.Registry

	// сканирование
	ScanCycles     *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	SymbolsScanned prometheus.Counter
	StageOutcomes  *prometheus.CounterVec
	LastMatches    prometheus.Gauge

	// запросы к бирже
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// кэш
	CacheLookups *prometheus.CounterVec
}

// NewMetrics создает метрики на собственном реестре
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rsi_radar"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ScanCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cycles_total",
			Help:      "Scan cycles by final status",
		}, []string{"status"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full scan cycle",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),
		SymbolsScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "symbols_total",
			Help:      "Symbols evaluated by the worker pool",
		}),
		StageOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "stage_outcomes_total",
			Help:      "RSI stage evaluations by stage and outcome",
		}, []string{"stage", "outcome"}),
		LastMatches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "last_matches",
			Help:      "Number of matches found by the last cycle",
		}),

		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream REST requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream REST request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache name and result",
		}, []string{"cache", "result"}),
	}
}

// Handler - обработчик /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry возвращает реестр (тесты, дополнительные коллекторы)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest учитывает один запрос к бирже
func (m *Metrics) ObserveRequest(endpoint string, err error, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(took.Seconds())
}

// CacheLookup учитывает попадание или промах
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// StageOutcome учитывает исход стадии RSI
func (m *Metrics) StageOutcome(stage, outcome string) {
	if m == nil {
		return
	}
	m.StageOutcomes.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) SymbolScanned() {
	if m == nil {
		return
	}
	m.SymbolsScanned.Inc()
}

// CycleFinished учитывает завершение цикла
func (m *Metrics) CycleFinished(status string, took time.Duration, matches int) {
	if m == nil {
		return
	}
	m.ScanCycles.WithLabelValues(status).Inc()
	m.ScanDuration.Observe(took.Seconds())
	m.LastMatches.Set(float64(matches))
}
