package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	modsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/model"
	"github.com/sakif/birthday-tracker/internal/repository"
)

// compile-time check that *userRepo implements repository.UserRepository
var _ repository.UserRepository = (*userRepo)(nil)

const userColumns = `id, telegram_id, first_name, last_name, username, created_at`

// userRepo runs user queries on the connection borrowed by DB.Session.
type userRepo struct {
	q querier
}

// Create inserts a new user and fills in the generated ID and CreatedAt.
//
// The UNIQUE index on telegram_id is the final word on duplicates: if two
// registrations race past the existence check, the loser's INSERT fails here
// and is reported as a conflict rather than a storage error.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	createdAt := time.Now().UTC()

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO "user" (telegram_id, first_name, last_name, username, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.Username,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user")
		}
		return fmt.Errorf("sqlite: inserting user (telegramID=%d): %w", user.TelegramID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading id of new user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a user by primary key.
func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByTelegramID retrieves a user by their Telegram id.
func (r *userRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE telegram_id = ?`, telegramID)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", "telegram:"+strconv.FormatInt(telegramID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user by telegram_id %d: %w", telegramID, err)
	}
	return u, nil
}

// List returns every user ordered by id.
func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM "user" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// Update writes the mutable profile fields. telegram_id and created_at never change.
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE "user" SET first_name = ?, last_name = ?, username = ? WHERE id = ?`,
		user.FirstName,
		user.LastName,
		user.Username,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	return expectOneRow(res, user.ID)
}

// Delete removes a user by primary key.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM "user" WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Count returns the number of stored users.
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(
		&u.ID,
		&u.TelegramID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *modsqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
