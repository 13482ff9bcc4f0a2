// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rsi-radar/application/scheduler"
	"rsi-radar/internal/core/domain/scanner"
	"rsi-radar/internal/delivery/httpapi"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Application - собранное приложение: сканер, доставка, планировщик, HTTP
type Application struct {
	cfg *config.Config
	*components

	mu        sync.Mutex
	startTime time.Time
}

// New собирает приложение по конфигурации
func New(ctx context.Context, cfg *config.Config) *Application {
	return &Application{cfg: cfg, components: buildComponents(ctx, cfg)}
}

// Scanner возвращает оркестратор
func (app *Application) Scanner() *scanner.Scanner {
	return app.scanner
}

// ScanAndPublish выполняет цикл и публикует результат (Telegram или консоль)
func (app *Application) ScanAndPublish(ctx context.Context) (*market.ScanReport, error) {
	report, err := app.scanner.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := app.notifier.Publish(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// Serve запускает планировщик и HTTP API и ждет отмены ctx
func (app *Application) Serve(ctx context.Context) error {
	app.mu.Lock()
	if !app.startTime.IsZero() {
		app.mu.Unlock()
		return fmt.Errorf("приложение уже запущено")
	}
	app.startTime = time.Now()
	app.mu.Unlock()

	logger.Info("🚀 Запуск приложения...")

	sched := scheduler.New(scheduler.Options{Timeout: app.cfg.Schedule.Timeout})
	sched.Register(&scheduler.Job{
		Name:       "rsi-scan",
		Schedule:   scheduler.Every(app.cfg.Schedule.Interval),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			_, err := app.ScanAndPublish(ctx)
			return err
		},
	})

	server := httpapi.NewServer(app.cfg.HTTP, app.scanner, app.metrics,
		httpapi.WithJobs(sched),
		httpapi.WithScanTimeout(app.cfg.Schedule.Timeout))

	sched.Start(ctx)
	server.Start()
	logger.Info("✅ Приложение запущено и работает")

	<-ctx.Done()
	logger.Info("🛑 Получен сигнал завершения...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("⚠️ Ошибка остановки HTTP сервера: %v", err)
	}
	sched.Stop()
	app.Close()

	logger.Info("✅ Приложение остановлено. Время работы: %v", time.Since(app.startTime).Round(time.Second))
	return nil
}

// Close освобождает внешние ресурсы
func (app *Application) Close() {
	if app.redis != nil {
		if err := app.redis.Stop(); err != nil {
			logger.Warn("⚠️ %v", err)
		}
	}
}
