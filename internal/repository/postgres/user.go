package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/model"
	"github.com/sakif/birthday-tracker/internal/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const userColumns = `id, telegram_id, first_name, last_name, username, created_at`

type userRepo struct {
	conn *pgxpool.Conn
}

// Create inserts user; the database assigns id and created_at.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	err := r.conn.QueryRow(ctx,
		`INSERT INTO "user" (telegram_id, first_name, last_name, username)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		user.TelegramID, user.FirstName, user.LastName, user.Username,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.Conflict("user")
		}
		return fmt.Errorf("postgres: inserting user (telegramID=%d): %w", user.TelegramID, err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("postgres: getting user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", "telegram:"+strconv.FormatInt(telegramID, 10))
		}
		return nil, fmt.Errorf("postgres: getting user by telegram_id %d: %w", telegramID, err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+userColumns+` FROM "user" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating users: %w", err)
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE "user" SET first_name = $1, last_name = $2, username = $3 WHERE id = $4`,
		user.FirstName, user.LastName, user.Username, user.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating user %d: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
