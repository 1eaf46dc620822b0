// Package repository declares the storage contracts the service layer codes
// against. Concrete backends live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/birthday-tracker/internal/model"
)

// UserRepository reads and writes users through one borrowed connection.
// Values are only valid inside the Store.Session callback that produced them.
type UserRepository interface {
	// Create inserts user and fills in ID and CreatedAt.
	// Returns an apperror.ErrConflict error if the telegram id is taken.
	Create(ctx context.Context, user *model.User) error
	// GetByID returns apperror.ErrNotFound if no row matches.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByTelegramID returns apperror.ErrNotFound if no row matches.
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Store owns the connection pool for the lifetime of the process.
type Store interface {
	// Init creates the schema. Safe to call on an initialised database.
	Init(ctx context.Context) error
	// Session borrows one connection, passes a repository bound to it to fn
	// and returns the connection to the pool on every exit path.
	Session(ctx context.Context, fn func(users UserRepository) error) error
	// Close disposes the pool. Calls after the first are no-ops.
	Close() error
}
