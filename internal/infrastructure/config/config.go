// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rsi-radar/pkg/logger"
	"rsi-radar/pkg/period"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БИРЖИ
// ============================================

// ExchangeConfig - адреса и бюджет запросов к бирже
type ExchangeConfig struct {
	FuturesURL        string        `mapstructure:"BINANCE_FUTURES_URL"`
	ProductFeedURL    string        `mapstructure:"PRODUCT_FEED_URL"`
	HTTPTimeout       time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`
	RequestBurst      int           `mapstructure:"REQUEST_BURST"`
}

// StageConfig - параметры одной стадии RSI фильтра
type StageConfig struct {
	Interval  string  // интервал свечей, например 1h
	Period    int     // период сглаживания RSI
	Threshold float64 // минимальное значение RSI
}

// ScannerConfig - параметры цикла сканирования
type ScannerConfig struct {
	QuoteAsset                  string   `mapstructure:"QUOTE_ASSET"`
	MinVolume                   float64  `mapstructure:"MIN_VOLUME"`
	Concurrency                 int      `mapstructure:"SCAN_CONCURRENCY"`
	CandleLookback              int      `mapstructure:"CANDLE_LOOKBACK"`
	ProgressEvery               int      `mapstructure:"PROGRESS_EVERY"`
	LeveragedPrefixes           []string `mapstructure:"LEVERAGED_PREFIXES"`
	DefaultFundingIntervalHours float64  `mapstructure:"DEFAULT_FUNDING_INTERVAL_HOURS"`

	StageA StageConfig
	StageB StageConfig
}

// CacheConfig - TTL наборов данных
type CacheConfig struct {
	CandleTTL time.Duration `mapstructure:"CANDLE_CACHE_TTL"`
	RankTTL   time.Duration `mapstructure:"RANK_CACHE_TTL"`
}

// RedisConfig - опциональный бэкенд кэша
type RedisConfig struct {
	Enabled  bool   `mapstructure:"REDIS_ENABLED"`
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
	Prefix   string `mapstructure:"REDIS_PREFIX"`
}

// TelegramConfig - доставка отчетов
type TelegramConfig struct {
	Enabled             bool   `mapstructure:"TELEGRAM_ENABLED"`
	BotToken            string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	ChatID              string `mapstructure:"TELEGRAM_CHAT_ID"`
	APIURL              string `mapstructure:"TELEGRAM_API_URL"`
	MaxRows             int    `mapstructure:"TELEGRAM_MAX_ROWS"`
	TimezoneOffsetHours int    `mapstructure:"TELEGRAM_TIMEZONE_OFFSET_HOURS"`
	TestMode            bool   `mapstructure:"TELEGRAM_TEST_MODE"`
}

// ScheduleConfig - периодический запуск сканирования
type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"SCHEDULE_INTERVAL"`
	Timeout  time.Duration `mapstructure:"SCHEDULE_TIMEOUT"`
}

// HTTPConfig - API для слоя отображения
type HTTPConfig struct {
	Addr           string `mapstructure:"HTTP_ADDR"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	// ReleaseMode - gin без отладочного вывода (все окружения, кроме dev)
	ReleaseMode    bool
}

// LoggingConfig - настройки логгера
type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
	File  string `mapstructure:"LOG_FILE"`
	Debug bool   `mapstructure:"DEBUG"`
}

// Config - основная структура конфигурации
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	Exchange ExchangeConfig
	Scanner  ScannerConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Schedule ScheduleConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
}

// LoadConfig загружает .env (если есть) и переменные окружения
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("⚠️  Config file %s not found, using environment variables\n", path)
		}
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "")
	cfg.Logging.Debug = getEnvBool("DEBUG", false)

	// ======================
	// БИРЖА
	// ======================
	cfg.Exchange.FuturesURL = strings.TrimRight(getEnv("BINANCE_FUTURES_URL", "https://fapi.binance.com"), "/")
	cfg.Exchange.ProductFeedURL = strings.TrimRight(getEnv("PRODUCT_FEED_URL", "https://www.binance.com"), "/")
	cfg.Exchange.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	cfg.Exchange.RequestsPerSecond = getEnvFloat("REQUESTS_PER_SECOND", 35)
	cfg.Exchange.RequestBurst = getEnvInt("REQUEST_BURST", 40)

	// ======================
	// СКАНЕР
	// ======================
	cfg.Scanner.QuoteAsset = strings.ToUpper(getEnv("QUOTE_ASSET", "USDT"))
	cfg.Scanner.MinVolume = getEnvFloat("MIN_VOLUME", 0)
	cfg.Scanner.Concurrency = getEnvInt("SCAN_CONCURRENCY", 40)
	cfg.Scanner.CandleLookback = getEnvInt("CANDLE_LOOKBACK", 35)
	cfg.Scanner.ProgressEvery = getEnvInt("PROGRESS_EVERY", 10)
	cfg.Scanner.LeveragedPrefixes = parseList(getEnv("LEVERAGED_PREFIXES", "1000000,100000,10000,1000,100,1M"))
	cfg.Scanner.DefaultFundingIntervalHours = getEnvFloat("DEFAULT_FUNDING_INTERVAL_HOURS", 8)

	cfg.Scanner.StageA = StageConfig{
		Interval:  getEnv("STAGE_A_INTERVAL", "1h"),
		Period:    getEnvInt("STAGE_A_PERIOD", 6),
		Threshold: getEnvFloat("STAGE_A_THRESHOLD", 90),
	}
	cfg.Scanner.StageB = StageConfig{
		Interval:  getEnv("STAGE_B_INTERVAL", "4h"),
		Period:    getEnvInt("STAGE_B_PERIOD", 6),
		Threshold: getEnvFloat("STAGE_B_THRESHOLD", 80),
	}

	// ======================
	// КЭШ
	// ======================
	cfg.Cache.CandleTTL = getEnvDuration("CANDLE_CACHE_TTL", 60*time.Second)
	cfg.Cache.RankTTL = getEnvDuration("RANK_CACHE_TTL", time.Hour)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.Prefix = getEnv("REDIS_PREFIX", "rsiradar:")

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", "")
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "")
	cfg.Telegram.APIURL = strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/")
	cfg.Telegram.MaxRows = getEnvInt("TELEGRAM_MAX_ROWS", 15)
	cfg.Telegram.TimezoneOffsetHours = getEnvInt("TELEGRAM_TIMEZONE_OFFSET_HOURS", 8)
	cfg.Telegram.TestMode = getEnvBool("TELEGRAM_TEST_MODE", false)

	// ======================
	// РАСПИСАНИЕ И HTTP
	// ======================
	cfg.Schedule.Interval = getEnvDuration("SCHEDULE_INTERVAL", 15*time.Minute)
	cfg.Schedule.Timeout = getEnvDuration("SCHEDULE_TIMEOUT", 5*time.Minute)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.HTTP.ReleaseMode = !cfg.IsDev()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate проверяет конфигурацию и возвращает все ошибки сразу
func (c *Config) Validate() error {
	var validationErrors []string

	if c.Exchange.FuturesURL == "" {
		validationErrors = append(validationErrors, "BINANCE_FUTURES_URL is required")
	}
	if c.Exchange.RequestsPerSecond <= 0 {
		validationErrors = append(validationErrors, "REQUESTS_PER_SECOND must be positive")
	}
	if c.Exchange.RequestBurst <= 0 {
		validationErrors = append(validationErrors, "REQUEST_BURST must be positive")
	}
	if c.Scanner.QuoteAsset == "" {
		validationErrors = append(validationErrors, "QUOTE_ASSET is required")
	}
	if c.Scanner.MinVolume < 0 {
		validationErrors = append(validationErrors, "MIN_VOLUME must not be negative")
	}
	if c.Scanner.Concurrency <= 0 {
		validationErrors = append(validationErrors, "SCAN_CONCURRENCY must be positive")
	}
	if c.Scanner.CandleLookback <= 0 {
		validationErrors = append(validationErrors, "CANDLE_LOOKBACK must be positive")
	}
	for name, stage := range map[string]StageConfig{"STAGE_A": c.Scanner.StageA, "STAGE_B": c.Scanner.StageB} {
		if !period.IsKlineInterval(stage.Interval) {
			validationErrors = append(validationErrors, name+"_INTERVAL must be a kline interval (1m..1d)")
		}
		if stage.Period <= 0 {
			validationErrors = append(validationErrors, name+"_PERIOD must be positive")
		}
		if stage.Period+1 > c.Scanner.CandleLookback {
			validationErrors = append(validationErrors, name+"_PERIOD must be smaller than CANDLE_LOOKBACK")
		}
		if stage.Threshold < 0 || stage.Threshold > 100 {
			validationErrors = append(validationErrors, name+"_THRESHOLD must be in [0, 100]")
		}
	}
	if c.Cache.CandleTTL <= 0 || c.Cache.RankTTL <= 0 {
		validationErrors = append(validationErrors, "cache TTLs must be positive")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			validationErrors = append(validationErrors, "TELEGRAM_BOT_TOKEN is required when Telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			validationErrors = append(validationErrors, "TELEGRAM_CHAT_ID is required when Telegram is enabled")
		}
	}
	if c.Schedule.Interval <= 0 {
		validationErrors = append(validationErrors, "SCHEDULE_INTERVAL must be positive")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// StageWindow - отрезок истории, который покрывает выборка свечей стадии
func (c *ScannerConfig) StageWindow(stage StageConfig) time.Duration {
	window, err := period.Window(stage.Interval, c.CandleLookback)
	if err != nil {
		return 0
	}
	return window
}

// GetRedisAddress возвращает адрес Redis
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsDev возвращает true если текущее окружение - разработка
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// PrintSummary выводит эффективную конфигурацию
func (c *Config) PrintSummary() {
	logger.Info("📋 Конфигурация сканера:")
	logger.Info("   • Окружение: %s", c.Environment)
	logger.Info("   • Биржа: %s (лимит %.0f rps, burst %d)", c.Exchange.FuturesURL, c.Exchange.RequestsPerSecond, c.Exchange.RequestBurst)
	logger.Info("   • Котировка: %s, минимальный объем: %.0f", c.Scanner.QuoteAsset, c.Scanner.MinVolume)
	for i, stage := range []StageConfig{c.Scanner.StageA, c.Scanner.StageB} {
		logger.Info("   • Стадия %c: RSI(%d) %s ≥ %.0f, окно %v", 'A'+i, stage.Period, stage.Interval, stage.Threshold,
			c.Scanner.StageWindow(stage))
	}
	logger.Info("   • Воркеров: %d, свечей: %d", c.Scanner.Concurrency, c.Scanner.CandleLookback)
	logger.Info("   • Кэш: свечи %v, ранги %v", c.Cache.CandleTTL, c.Cache.RankTTL)
	if c.Redis.Enabled {
		logger.Info("   • Redis: %s (DB: %d)", c.GetRedisAddress(), c.Redis.DB)
	}
	logger.Info("   • Telegram включен: %v", c.Telegram.Enabled)
	logger.Info("   • Расписание: каждые %v", c.Schedule.Interval)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
