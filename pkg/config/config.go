package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Backend providers.
const (
	ProviderSupabase = "supabase"
	ProviderMemory   = "memory"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`

		StartTimeout time.Duration `env:"APP_START_TIMEOUT" env-default:"30s"`
		StopTimeout  time.Duration `env:"APP_STOP_TIMEOUT" env-default:"15s"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Backend struct {
		Provider      string  `env:"BACKEND_PROVIDER" env-default:"supabase"`
		RatePerSecond float64 `env:"BACKEND_RATE_PER_SECOND" env-default:"10"`
		Burst         int     `env:"BACKEND_BURST" env-default:"5"`
	}
	Breaker struct {
		MaxRequests      uint32        `env:"BREAKER_MAX_REQUESTS" env-default:"5"`
		Interval         time.Duration `env:"BREAKER_INTERVAL" env-default:"30s"`
		Timeout          time.Duration `env:"BREAKER_TIMEOUT" env-default:"60s"`
		FailureThreshold float64       `env:"BREAKER_FAILURE_THRESHOLD" env-default:"0.8"`
		MinRequests      uint32        `env:"BREAKER_MIN_REQUESTS" env-default:"5"`
	}
	Supabase struct {
		URL    string `env:"SUPABASE_URL"`
		Key    string `env:"SUPABASE_KEY"`
		Schema string `env:"SUPABASE_SCHEMA" env-default:"public"`
	}
	Collections struct {
		Users    string `env:"COLLECTION_USERS" env-default:"users"`
		Posts    string `env:"COLLECTION_POSTS" env-default:"posts"`
		Comments string `env:"COLLECTION_COMMENTS" env-default:"comments"`
	}
	Storage struct {
		Provider    string `env:"STORAGE_PROVIDER" env-default:"supabase"`
		MediaBucket string `env:"MEDIA_BUCKET" env-default:"media"`
		S3          struct {
			Endpoint  string `env:"S3_ENDPOINT"`
			AccessKey string `env:"S3_ACCESS_KEY"`
			SecretKey string `env:"S3_SECRET_KEY"`
			UseSSL    bool   `env:"S3_USE_SSL" env-default:"false"`
		}
	}
	Cache struct {
		StaleTime       time.Duration `env:"CACHE_STALE_TIME" env-default:"0s"`
		GCTime          time.Duration `env:"CACHE_GC_TIME" env-default:"5m"`
		RefreshInterval time.Duration `env:"CACHE_REFRESH_INTERVAL" env-default:"1m"`
		RetryCount      uint64        `env:"CACHE_RETRY_COUNT" env-default:"3"`
	}
	Session struct {
		Email    string `env:"SESSION_EMAIL"`
		Password string `env:"SESSION_PASSWORD"`
	}
	Telegram struct {
		User  int64  `env:"TELEGRAM_USER"`
		Token string `env:"TELEGRAM_TOKEN"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the connection string of the local Postgres store.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
