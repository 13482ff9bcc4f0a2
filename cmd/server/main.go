// cmd/server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rsi-radar/application/bootstrap"
	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/pkg/logger"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		logger.Fatal("❌ Не удалось загрузить конфигурацию: %v", err)
	}
	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Debug); err != nil {
		logger.Fatal("❌ Не удалось открыть лог: %v", err)
	}
	defer logger.GetLogger().Close()

	cfg.PrintSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(ctx, cfg)
	if err := app.Serve(ctx); err != nil {
		logger.Fatal("❌ %v", err)
	}
}
