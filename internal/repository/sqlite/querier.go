package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
)

// querier is the subset of *sql.DB / *sql.Conn / *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) querier(q querier) querier {
	if !db.echo {
		return q
	}
	return &echoQuerier{q: q, logger: db.logger}
}

// echoQuerier logs every statement before running it.
type echoQuerier struct {
	q      querier
	logger *slog.Logger
}

func (e *echoQuerier) log(ctx context.Context, query string, args []any) {
	e.logger.InfoContext(ctx, "sql",
		slog.String("query", compact(query)),
		slog.Any("args", args),
	)
}

func (e *echoQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	e.log(ctx, query, args)
	return e.q.ExecContext(ctx, query, args...)
}

func (e *echoQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	e.log(ctx, query, args)
	return e.q.QueryContext(ctx, query, args...)
}

func (e *echoQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	e.log(ctx, query, args)
	return e.q.QueryRowContext(ctx, query, args...)
}

// compact folds a multi-line statement onto one line.
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
