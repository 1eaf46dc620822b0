// Package database opens the repository.Store named by a DATABASE_URL.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/birthday-tracker/internal/repository"
	"github.com/sakif/birthday-tracker/internal/repository/postgres"
	"github.com/sakif/birthday-tracker/internal/repository/sqlite"
)

const sqliteScheme = "sqlite://"

// Open picks a backend from the URL scheme:
//
//	sqlite://:memory:            in-memory SQLite
//	sqlite://data/birthday.db    file SQLite, parent dirs created
//	postgres://... postgresql:// PostgreSQL via pgx
//
// echo turns on statement logging.
func Open(ctx context.Context, url string, logger *slog.Logger, echo bool) (repository.Store, error) {
	switch {
	case strings.HasPrefix(url, sqliteScheme):
		path := strings.TrimPrefix(url, sqliteScheme)
		if path == "" {
			path = sqlite.MemoryPath
		}
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		db, err := sqlite.New(path, logger, echo)
		if err != nil {
			return nil, err
		}
		return db, nil

	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		db, err := postgres.New(ctx, url, logger, echo)
		if err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("database: unsupported DATABASE_URL scheme in %q", redact(url))
	}
}

// ensureDir creates the parent directory of a file-backed SQLite database.
func ensureDir(path string) error {
	if path == sqlite.MemoryPath || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("database: creating directory %q: %w", dir, err)
	}
	return nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	if len(url) > 12 {
		return url[:12] + "..."
	}
	return url
}
