// internal/delivery/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rsi-radar/application/scheduler"
	"rsi-radar/internal/core/domain/scanner"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/observability"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ScanRunner - то, что умеет запускать цикл и отдавать его результат
type ScanRunner interface {
	Run(ctx context.Context) (*market.ScanReport, error)
	State() scanner.State
	LastReport() *market.ScanReport
	Progress() (done, total int)
}

// JobLister - статусы задач планировщика
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// Server - JSON API результатов сканирования
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	runner      ScanRunner
	jobs        JobLister
	scanTimeout time.Duration
}

// Option настраивает Server
type Option func(*Server)

// WithJobs подключает статусы планировщика к /api/v1/scan/state
func WithJobs(jobs JobLister) Option {
	return func(s *Server) { s.jobs = jobs }
}

// WithScanTimeout ограничивает ручной запуск через POST /api/v1/scan
func WithScanTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.scanTimeout = d
		}
	}
}

// NewServer собирает роутер
func NewServer(cfg config.HTTPConfig, runner ScanRunner, metrics *observability.Metrics, opts ...Option) *Server {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:      engine,
		runner:      runner,
		scanTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.GET("/health", s.health)
	engine.HEAD("/health", s.health)

	v1 := engine.Group("/api/v1/scan")
	v1.GET("/latest", s.latest)
	v1.GET("/state", s.state)
	v1.POST("", s.trigger)

	if cfg.MetricsEnabled && metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler - для тестов и встраивания
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start слушает адрес в фоне
func (s *Server) Start() {
	go func() {
		logger.Info("🌐 HTTP API слушает %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ HTTP server: %v", err)
		}
	}()
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("🌐 %s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
