package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options tunes the pool behind the store repositories.
type Options struct {
	Addr        string
	MaxConns    int32
	MaxIdleTime string
	AppName     string
}

// New opens a pgx pool and fails fast when the database cannot be reached.
func New(opts Options) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ADDR: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MaxIdleTime != "" {
		idle, err := time.ParseDuration(opts.MaxIdleTime)
		if err != nil {
			return nil, fmt.Errorf("parse DB_MAX_IDLE_TIME: %w", err)
		}
		config.MaxConnIdleTime = idle
	}
	if opts.AppName != "" {
		config.ConnConfig.RuntimeParams["application_name"] = opts.AppName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
