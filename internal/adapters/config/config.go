package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App            AppConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	Quotes         QuotesConfig
	StrategyEngine StrategyEngineConfig
	ErrorTracking  ErrorTrackingConfig
	Workers        WorkersConfig
	Health         HealthConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type QuotesConfig struct {
	BaseURL           string        `envconfig:"QUOTES_BASE_URL" required:"true"`
	APIKey            string        `envconfig:"QUOTES_API_KEY"`
	RequestTimeout    time.Duration `envconfig:"QUOTES_REQUEST_TIMEOUT" default:"5s"`
	CacheTTL          time.Duration `envconfig:"QUOTES_CACHE_TTL" default:"60s"`
	RequestsPerMinute int           `envconfig:"QUOTES_REQUESTS_PER_MINUTE" default:"120"`
}

type StrategyEngineConfig struct {
	BaseURL        string        `envconfig:"STRATEGY_ENGINE_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"STRATEGY_ENGINE_REQUEST_TIMEOUT" default:"3s"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
}

type WorkersConfig struct {
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"2m"`
	RefreshMaxAge   time.Duration `envconfig:"REFRESH_MAX_AGE" default:"10m"`
	RefreshBatch    int           `envconfig:"REFRESH_BATCH" default:"50"`
}

type HealthConfig struct {
	Addr string `envconfig:"HEALTH_ADDR" default:":8081"`
}

// Load reads configuration from the environment, with optional .env file
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
