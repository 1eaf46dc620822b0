// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C toolchain is
// needed. It plugs into database/sql like any other driver:
//
//  1. sql.Open("sqlite", dsn) creates a pool (no connection yet)
//  2. Ping forces the first connection
//  3. Session borrows a single *sql.Conn per unit of work
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/birthday-tracker/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection pool and hands out per-session repositories.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	echo   bool // log every statement (development only)

	closeOnce sync.Once
	closeErr  error
}

// New opens the database at path and verifies the connection.
//
// path examples:
//   - "data/birthday.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database, lost when the pool closes
//
// An in-memory database lives inside a single connection, so the pool is
// pinned to one connection and never recycles it.
func New(path string, logger *slog.Logger, echo bool) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if isMemory(path) {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	return &DB{conn: conn, logger: logger, echo: echo}, nil
}

// dsn adds per-connection pragmas. Pragmas set with a plain Exec only apply
// to whichever pooled connection ran them, so they go in the DSN instead.
func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !isMemory(path) {
		// WAL lets readers proceed while a write is in flight.
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}

func isMemory(path string) bool {
	return path == MemoryPath || strings.Contains(path, "mode=memory")
}

// Init creates the user table and its unique index if they are missing.
func (db *DB) Init(ctx context.Context) error {
	db.logger.Debug("creating db and tables")

	_, err := db.querier(db.conn).ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS "user" (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER NOT NULL,
			first_name  TEXT NOT NULL,
			last_name   TEXT,
			username    TEXT,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS ix_user_telegram_id ON "user"(telegram_id);
	`)
	if err != nil {
		return fmt.Errorf("sqlite: creating user table: %w", err)
	}
	return nil
}

// Session borrows one connection from the pool for the duration of fn.
func (db *DB) Session(ctx context.Context, fn func(users repository.UserRepository) error) error {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: acquiring connection: %w", err)
	}
	defer conn.Close() // returns the connection to the pool

	return fn(&userRepo{q: db.querier(conn)})
}

// Close closes the connection pool. Only the first call does any work.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		db.closeErr = db.conn.Close()
	})
	return db.closeErr
}
