package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration for the chat service and its worker.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-service"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"5002"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	// Conversation store
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DB_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"4"`
	RunMigrations bool   `env:"DB_RUN_MIGRATIONS" envDefault:"true"`

	// Redis backs the profile cache, the notification queue and worker dedup.
	RedisURL          string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	NotificationQueue string `env:"NOTIFICATION_QUEUE" envDefault:"notifications"`
	WorkerConcurrency int    `env:"ASYNQ_CONCURRENCY" envDefault:"10"`
	WorkerQueues      string `env:"ASYNQ_QUEUES" envDefault:"notifications=1"`

	// Auth
	JWTSecret string `env:"JWT_SECRET"`

	// Identity service
	UserServiceURL     string        `env:"USER_SERVICE_URL" envDefault:"http://localhost:5000"`
	UserServiceTimeout time.Duration `env:"USER_SERVICE_TIMEOUT" envDefault:"3s"`
	ProfileCacheTTL    time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
	ProfileCacheSize   int           `env:"PROFILE_CACHE_SIZE" envDefault:"1024"`

	// Image storage (S3 compatible). Uploads are disabled when S3_BUCKET is empty.
	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKeyID   string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	S3KeyPrefix     string `env:"S3_KEY_PREFIX" envDefault:"chat-images"`
	MaxImageBytes   int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that env tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER is %q", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ImageUploadsEnabled reports whether an object store bucket is configured.
func (c *Config) ImageUploadsEnabled() bool {
	return strings.TrimSpace(c.S3Bucket) != ""
}
