package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxAttempts     int
	RetryDelay      time.Duration
}

// NewPostgresDB opens a pool and waits for the server to answer, retrying
// while it is still starting up.
func NewPostgresDB(ctx context.Context, cfg Config, log *slog.Logger) (*sql.DB, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		log.Info("connecting to database", "attempt", attempt, "max_attempts", cfg.MaxAttempts)
		if err = db.PingContext(ctx); err == nil {
			log.Info("database connected")
			return db, nil
		}

		log.Warn("database not ready", "err", err, "retry_in", cfg.RetryDelay)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.MaxAttempts, err)
}
