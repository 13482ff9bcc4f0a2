// cmd/radar/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rsi-radar/application/bootstrap"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"
	"rsi-radar/pkg/utils"
)

// Один цикл сканирования: результат уходит в Telegram (или в консоль),
// код выхода ненулевой при сбое цикла или доставки.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig(envFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Не удалось загрузить конфигурацию: %v\n", err)
		return 2
	}
	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Не удалось открыть лог: %v\n", err)
		return 2
	}
	defer logger.GetLogger().Close()

	cfg.PrintSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Schedule.Timeout)
	defer cancel()

	app := bootstrap.New(ctx, cfg)
	defer app.Close()

	report, err := app.ScanAndPublish(ctx)
	if report != nil {
		printSummary(report)
	}
	if err != nil {
		logger.Error("❌ Сканирование не удалось: %v", err)
		return 1
	}
	return 0
}

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func printSummary(report *market.ScanReport) {
	logger.GetLogger().Status("Итог сканирования "+report.ID, map[string]string{
		"Проверено пар": fmt.Sprintf("%d/%d", report.Scanned, report.Total),
		"Длительность":  utils.FormatDuration(report.Duration()),
		"Совпадений":    fmt.Sprintf("%d", len(report.Results)),
		"Неполный":      fmt.Sprintf("%v", report.Partial),
	})
	for _, r := range report.Results {
		logger.Info("   • %-16s RSI %5.1f / %5.1f  vol %8s  24h %8s  rank %s  %s",
			r.Symbol, r.RSIShort, r.RSILong, utils.FormatVolume(r.Volume), utils.FormatPercent(r.PercentChange), r.RankLabel(), r.TradeURL())
	}
}
