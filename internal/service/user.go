// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// The service depends on repository.Store (an interface), never on a concrete
// backend, so tests can hand it an in-memory SQLite store or a fake.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/model"
	"github.com/sakif/birthday-tracker/internal/repository"
)

// UserService handles user registration.
type UserService struct {
	store    repository.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserService creates a UserService backed by store.
func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:    store,
		validate: newValidator(),
		logger:   logger,
	}
}

// newValidator reports fields by their JSON names ("telegram_id", not "TelegramID").
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCreate checks the shape of a registration request.
// It returns an apperror.ErrValidation error naming the first bad field.
func (s *UserService) ValidateCreate(req model.UserCreate) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := "field " + fe.Tag()
		if fe.Tag() == "required" {
			msg = "field required"
		}
		return apperror.ValidationFailed(fe.Field(), msg)
	}
	return fmt.Errorf("validating user: %w", err)
}

// Register creates a user unless one with the same Telegram id exists.
//
// The request is validated before any storage access. A duplicate id yields an
// apperror.ErrConflict error and leaves the store untouched.
func (s *UserService) Register(ctx context.Context, req model.UserCreate) (*model.User, error) {
	if err := s.ValidateCreate(req); err != nil {
		return nil, err
	}

	s.logger.Debug("received user", slog.Int64("telegramID", *req.TelegramID), slog.String("firstName", *req.FirstName))

	var created *model.User
	err := s.store.Session(ctx, func(users repository.UserRepository) error {
		u, err := s.registerUser(ctx, users, req)
		created = u
		return err
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	return created, nil
}

// registerUser is the check-then-insert step, run inside one session.
//
// The existence check gives the common duplicate case a clean answer. Two
// concurrent registrations can both pass it; the UNIQUE index then rejects
// the second INSERT and the repository reports that as the same conflict.
func (s *UserService) registerUser(ctx context.Context, users repository.UserRepository, req model.UserCreate) (*model.User, error) {
	s.logger.Info("searching user in the DB")

	_, err := users.GetByTelegramID(ctx, *req.TelegramID)
	switch {
	case err == nil:
		s.logger.Error("user is already registered",
			slog.Int64("telegramID", *req.TelegramID),
			slog.String("firstName", *req.FirstName),
		)
		return nil, apperror.Conflict("user")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	s.logger.Info("creating new user")

	user := model.NewUser(req)
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("user registered concurrently",
				slog.Int64("telegramID", user.TelegramID),
			)
		}
		return nil, err
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.Int64("telegramID", user.TelegramID),
	)
	return user, nil
}
