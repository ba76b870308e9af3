package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sportsadmin.backend/internal/config"
)

const defaultPingTimeout = 5 * time.Second

var (
	openPool = sql.Open
	pingPool = func(ctx context.Context, db *sql.DB) error { return db.PingContext(ctx) }
)

// NewConnection opens the pool through lib/pq, verifies it, and hands it to gorm.
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	pool, err := openPool("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	tunePool(pool, cfg)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := pingPool(ctx, pool); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: pool}), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return db, nil
}

// tunePool applies the configured limits; zero values keep database/sql defaults.
func tunePool(pool *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
