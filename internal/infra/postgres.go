package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig sizes the search-run audit pool. Zero values keep the defaults.
type PoolConfig struct {
	MaxConns    int
	MinConns    int
	Application string
}

const (
	defaultMaxConns    = 10
	defaultMinConns    = 1
	defaultApplication = "hotel-curator"
)

func (p PoolConfig) apply(cfg *pgxpool.Config) {
	cfg.MaxConns = int32(orDefault(p.MaxConns, defaultMaxConns))
	cfg.MinConns = int32(min(orDefault(p.MinConns, defaultMinConns), int(cfg.MaxConns)))
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	app := p.Application
	if app == "" {
		app = defaultApplication
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = app
}

// NewPostgresDB opens the audit pool and pings it once.
func NewPostgresDB(ctx context.Context, dsn string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pc.apply(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
