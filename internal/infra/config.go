package infra

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents application configuration loaded from environment
// variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" env-default:"10"`
	JWTSecret   string `env:"JWT_SECRET"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	QueueName     string `env:"QUEUE_NAME" env-default:"media_generation"`

	StoragePath   string   `env:"STORAGE_PATH" env-default:"./storage"`
	GeoIPDBPath   string   `env:"GEOIP_DB_PATH"`
	DefaultLocale string   `env:"DEFAULT_LOCALE" env-default:"en"`
	CORSOrigins   []string `env:"CORS_ORIGINS" env-default:"http://localhost:3000"`

	GenerationDelay   time.Duration `env:"GENERATION_DELAY" env-default:"1s"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" env-default:"5m"`
	GenerationAPIURL  string        `env:"GENERATION_API_URL"`
	GenerationAPIKey  string        `env:"GENERATION_API_KEY"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RateLimitPerMin  int           `env:"RATE_LIMIT_PER_MINUTE" env-default:"30"`
}

// LoadConfig reads configuration from the environment and applies
// defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &cfg, nil
}
