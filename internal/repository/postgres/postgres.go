// Package postgres implements the repository interfaces on PostgreSQL using
// a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/sakif/birthday-tracker/internal/repository"
)

var _ repository.Store = (*DB)(nil)

type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	closeOnce sync.Once
}

// New connects to dsn and pings the server. With echo set, every statement
// is logged through logger.
func New(ctx context.Context, dsn string, logger *slog.Logger, echo bool) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}

	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	if echo {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   slogAdapter(logger),
			LogLevel: tracelog.LogLevelInfo,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// Init creates the user table and its unique index if they are missing.
func (db *DB) Init(ctx context.Context) error {
	db.logger.Debug("creating db and tables")

	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS "user" (
			id          BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL,
			first_name  TEXT NOT NULL,
			last_name   TEXT,
			username    TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("postgres: creating user table: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS ix_user_telegram_id ON "user"(telegram_id)`)
	if err != nil {
		return fmt.Errorf("postgres: creating telegram_id index: %w", err)
	}
	return nil
}

// Session acquires one pooled connection for the duration of fn.
func (db *DB) Session(ctx context.Context, fn func(users repository.UserRepository) error) error {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres: acquiring connection: %w", err)
	}
	defer conn.Release()

	return fn(&userRepo{conn: conn})
}

// Close closes every pooled connection. Only the first call does any work.
func (db *DB) Close() error {
	db.closeOnce.Do(db.pool.Close)
	return nil
}

// slogAdapter routes pgx trace output into the application logger.
func slogAdapter(logger *slog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attrs := make([]slog.Attr, 0, len(data))
		for k, v := range data {
			attrs = append(attrs, slog.Any(k, v))
		}
		logger.LogAttrs(ctx, slogLevel(level), "sql: "+msg, attrs...)
	}
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return slog.LevelDebug
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
