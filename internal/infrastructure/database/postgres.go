package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option mutates the pool configuration before the pool is created.
type Option func(*pgxpool.Config)

// WithMaxConns caps the pool size. Non-positive values keep the default.
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// Connect creates a pgx connection pool for dsn and verifies it with a ping.
// SQLAlchemy style DSNs such as postgresql+asyncpg:// are accepted.
func Connect(ctx context.Context, dsn string, opts ...Option) (*pgxpool.Pool, error) {
	normalized := normalizeDSN(dsn)
	if normalized == "" {
		return nil, fmt.Errorf("postgres: empty dsn")
	}

	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxConns == 0 {
		cfg.MaxConns = 4
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = time.Hour
	}
	if cfg.HealthCheckPeriod == 0 {
		cfg.HealthCheckPeriod = time.Minute
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

var dsnPrefixes = map[string]string{
	"postgresql+asyncpg://": "postgresql://",
	"postgres+asyncpg://":   "postgres://",
	"postgresql+pgx://":     "postgresql://",
	"postgres+pgx://":       "postgres://",
}

// normalizeDSN rewrites driver-qualified schemes into ones pgx understands.
func normalizeDSN(dsn string) string {
	s := strings.TrimSpace(dsn)
	for from, to := range dsnPrefixes {
		if strings.HasPrefix(s, from) {
			return to + strings.TrimPrefix(s, from)
		}
	}
	return s
}
