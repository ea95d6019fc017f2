package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreDriverRedis  = "redis"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"referral-miniapp-backend"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Store struct {
		// redis или sqlite
		Driver string `env:"STORE_DRIVER" envDefault:"redis"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`

		// Стрим, в который публикуются заявки на выплату
		PayoutStream   string `env:"REDIS_PAYOUT_STREAM" envDefault:"payout:requests"`
		PublishPayouts bool   `env:"PAYOUT_PUBLISH_ENABLED" envDefault:"true"`
	}

	SQLite struct {
		Path string `env:"SQLITE_PATH" envDefault:"referral.db"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN,required,notEmpty"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		// Ссылка на mini app, например https://t.me/examplebot/app
		AppURL string `env:"TELEGRAM_APP_URL" envDefault:""`
	}

	Referral struct {
		Bonus int64 `env:"REFERRAL_BONUS" envDefault:"2500"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}
}

// Load reads .env (if present) and the process environment into Config.
func Load() (*Config, error) {
	// .env может отсутствовать, в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverSQLite:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: expected %s or %s", c.Store.Driver, StoreDriverRedis, StoreDriverSQLite)
	}
	if c.Redis.PublishPayouts && c.Redis.PayoutStream == "" {
		return fmt.Errorf("REDIS_PAYOUT_STREAM must be set when payout publishing is enabled")
	}
	if c.Referral.Bonus < 0 {
		return fmt.Errorf("invalid REFERRAL_BONUS: must not be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("invalid rate limit settings")
	}
	return nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// UsesRedis reports whether a Redis connection is needed at all.
func (c *Config) UsesRedis() bool {
	return c.Store.Driver == StoreDriverRedis || c.Redis.PublishPayouts
}
