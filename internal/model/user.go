// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered app user, identified externally by their Telegram id.
//
// ID is assigned by the database on insert and TelegramID is unique across all
// users (UNIQUE index in every backend). LastName and Username are pointers
// because Telegram profiles may omit them and we want JSON null, not "".
type User struct {
	ID         int64     `json:"id"          db:"id"`
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	FirstName  string    `json:"first_name"  db:"first_name"`
	LastName   *string   `json:"last_name"   db:"last_name"`
	Username   *string   `json:"username"    db:"username"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// UserCreate is the input contract of the registration endpoint.
//
// TelegramID and FirstName are pointers so that a missing key can be told
// apart from a zero value: id 0 is legitimate (the dev seeder uses ids 0..9)
// and so is an empty first name. "required" on a pointer only checks presence.
type UserCreate struct {
	TelegramID *int64  `json:"telegram_id" validate:"required" required:"true"`
	FirstName  *string `json:"first_name"  validate:"required" required:"true"`
	LastName   *string `json:"last_name"`
	Username   *string `json:"username"`
}

// UserPublic is the subset of a User returned to API callers.
// The Telegram id is deliberately absent.
type UserPublic struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Username  *string   `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// UserUpdate carries partial profile changes. A nil field is left untouched.
type UserUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
}

// NewUser builds an unsaved User from a validated create request.
func NewUser(req UserCreate) *User {
	u := &User{
		LastName: req.LastName,
		Username: req.Username,
	}
	if req.TelegramID != nil {
		u.TelegramID = *req.TelegramID
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	return u
}

// Public returns the caller-safe view of u.
func (u *User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// Apply copies every set field of upd onto u.
func (upd UserUpdate) Apply(u *User) {
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.Username != nil {
		u.Username = upd.Username
	}
}
