package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://fapi.binance.com", cfg.Exchange.FuturesURL)
	assert.Equal(t, "USDT", cfg.Scanner.QuoteAsset)
	assert.Equal(t, 0.0, cfg.Scanner.MinVolume)
	assert.Equal(t, 40, cfg.Scanner.Concurrency)
	assert.Equal(t, 35, cfg.Scanner.CandleLookback)
	assert.Equal(t, StageConfig{Interval: "1h", Period: 6, Threshold: 90}, cfg.Scanner.StageA)
	assert.Equal(t, StageConfig{Interval: "4h", Period: 6, Threshold: 80}, cfg.Scanner.StageB)
	assert.Equal(t, 60*time.Second, cfg.Cache.CandleTTL)
	assert.Equal(t, time.Hour, cfg.Cache.RankTTL)
	assert.Equal(t, []string{"1000000", "100000", "10000", "1000", "100", "1M"}, cfg.Scanner.LeveragedPrefixes)
	assert.False(t, cfg.Telegram.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MIN_VOLUME", "5000000")
	t.Setenv("SCAN_CONCURRENCY", "8")
	t.Setenv("STAGE_A_THRESHOLD", "85")
	t.Setenv("STAGE_B_INTERVAL", "1d")
	t.Setenv("CANDLE_CACHE_TTL", "30s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5_000_000.0, cfg.Scanner.MinVolume)
	assert.Equal(t, 8, cfg.Scanner.Concurrency)
	assert.Equal(t, 85.0, cfg.Scanner.StageA.Threshold)
	assert.Equal(t, "1d", cfg.Scanner.StageB.Interval)
	assert.Equal(t, 30*time.Second, cfg.Cache.CandleTTL)
	assert.True(t, cfg.Telegram.Enabled)
}

func TestLoadConfig_InvalidValuesCollected(t *testing.T) {
	t.Setenv("SCAN_CONCURRENCY", "0")
	t.Setenv("STAGE_A_INTERVAL", "7h")
	t.Setenv("STAGE_B_THRESHOLD", "120")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_CONCURRENCY must be positive")
	assert.Contains(t, err.Error(), "STAGE_A_INTERVAL")
	assert.Contains(t, err.Error(), "STAGE_B_THRESHOLD")
}

func TestValidate_TelegramRequiresCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN is required")
}

func TestGetRedisAddress(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "cache", Port: 6380}}
	assert.Equal(t, "cache:6380", cfg.GetRedisAddress())
}

func TestLoadConfig_EnvironmentSelectsGinMode(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.HTTP.ReleaseMode)

	t.Setenv("ENVIRONMENT", "production")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
	assert.True(t, cfg.HTTP.ReleaseMode)
}

func TestScannerConfig_StageWindow(t *testing.T) {
	sc := ScannerConfig{CandleLookback: 35}
	assert.Equal(t, 35*time.Hour, sc.StageWindow(StageConfig{Interval: "1h"}))
	assert.Equal(t, 140*time.Hour, sc.StageWindow(StageConfig{Interval: "4h"}))
	assert.Zero(t, sc.StageWindow(StageConfig{Interval: "7h"}))
}
