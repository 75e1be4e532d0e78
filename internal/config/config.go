// Package config загружает конфигурацию сервиса ленты из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// перед этим подхватывается .env (если он есть).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Часовой пояс определяет границу суток для суточного джиттера и статистики "сегодня"
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Istanbul"`

	// --- HTTP ---
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPCORSOrigins string `envconfig:"HTTP_CORS_ORIGINS" default:"*"`

	// --- Database ---
	// Дефолт "postgres" — имя сервиса в docker-compose, для локалки переопределяй DB_HOST=localhost.
	DBHost           string        `envconfig:"DB_HOST" default:"postgres"`
	DBPort           int           `envconfig:"DB_PORT" default:"5432"`
	DBUser           string        `envconfig:"DB_USER" default:"feed"`
	DBPassword       string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName           string        `envconfig:"DB_NAME" default:"casino_feed"`
	DBSSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns       int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"30s"`

	// --- Feed ---
	// Интервал тика задаётся один раз на старте, из админки не меняется.
	FeedInterval        time.Duration `envconfig:"FEED_INTERVAL" default:"2s"`
	FeedCurrency        string        `envconfig:"FEED_CURRENCY" default:"₺"`
	FeedRetentionDays   int           `envconfig:"FEED_RETENTION_DAYS" default:"7"`
	FeedSeedSamples     bool          `envconfig:"FEED_SEED_SAMPLES" default:"true"`
	FeedDispatchTimeout time.Duration `envconfig:"FEED_DISPATCH_TIMEOUT" default:"5s"`

	// --- Admin ---
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`
	AdminJWTSecret    string        `envconfig:"ADMIN_JWT_SECRET" required:"true"`
	AdminTokenTTL     time.Duration `envconfig:"ADMIN_TOKEN_TTL" default:"24h"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- NATS (пусто = выключено) ---
	NatsURL     string `envconfig:"NATS_URL"`
	NatsSubject string `envconfig:"NATS_SUBJECT" default:"casino.feed.transactions"`

	// --- Telegram (пусто = выключено) ---
	TelegramBotToken      string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID        int64   `envconfig:"TELEGRAM_CHAT_ID"`
	TelegramMinMultiplier float64 `envconfig:"TELEGRAM_MIN_MULTIPLIER" default:"100"`

	// --- S3 для картинок игр (пусто = выключено) ---
	S3Bucket          string `envconfig:"S3_BUCKET"`
	S3Region          string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Endpoint        string `envconfig:"S3_ENDPOINT"`
	S3PublicURL       string `envconfig:"S3_PUBLIC_URL"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3MaxImageBytes   int64  `envconfig:"S3_MAX_IMAGE_BYTES" default:"5242880"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsProduction сообщает, запущен ли сервис в продакшене.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CORSOrigins разбирает HTTP_CORS_ORIGINS (через запятую).
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, p := range strings.Split(c.HTTPCORSOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// TelegramEnabled — включены ли анонсы в Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func (c *Config) Validate() error {
	if c.FeedInterval < time.Second {
		return fmt.Errorf("FEED_INTERVAL должен быть >= 1s")
	}
	// cron (@every) округляет интервал до целых секунд.
	if c.FeedInterval%time.Second != 0 {
		return fmt.Errorf("FEED_INTERVAL должен быть целым числом секунд, получено %s", c.FeedInterval)
	}
	if c.FeedDispatchTimeout <= 0 {
		return fmt.Errorf("FEED_DISPATCH_TIMEOUT должен быть > 0")
	}
	if c.FeedRetentionDays < 0 {
		return fmt.Errorf("FEED_RETENTION_DAYS не может быть отрицательным")
	}
	if strings.TrimSpace(c.FeedCurrency) == "" {
		return fmt.Errorf("FEED_CURRENCY не задан")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL должен быть > 0")
	}
	if len(c.AdminJWTSecret) < 16 {
		return fmt.Errorf("ADMIN_JWT_SECRET слишком короткий (минимум 16 символов)")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID обязателен, если задан TELEGRAM_BOT_TOKEN")
	}
	if c.S3MaxImageBytes <= 0 {
		return fmt.Errorf("S3_MAX_IMAGE_BYTES должен быть > 0")
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения и заполняет структуру Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("не удалось прочитать %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
