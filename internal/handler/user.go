// Package handler contains the HTTP handlers of the API.
//
// Handlers only translate between HTTP and the service layer: they decode the
// request, call the service and encode the result or the error.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/model"
)

const (
	msgFieldRequired = "field required"
	msgInvalidJSON   = "JSON decode error"

	maxBodyBytes = 1 << 20
)

// UserRegistrar is the part of service.UserService the handler needs.
type UserRegistrar interface {
	Register(ctx context.Context, req model.UserCreate) (*model.User, error)
}

// UserHandler serves the /users endpoints.
type UserHandler struct {
	users  UserRegistrar
	logger *slog.Logger
}

func NewUserHandler(users UserRegistrar, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleCreate registers a user.
// POST /users/
//
//	200 → UserPublic (no telegram_id)
//	409 → {"detail": "User already exists"}
//	422 → malformed JSON, wrong types or missing required fields
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.UserCreate

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("rejected request body", slog.String("error", err.Error()))
		writeError(w, decodeError(err))
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrConflict):
			h.logger.Warn("registration rejected", slog.String("reason", err.Error()))
		case errors.Is(err, apperror.ErrValidation):
		default:
			h.logger.Error("failed to register user", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// decodeError turns a JSON decoding failure into a validation error so the
// client gets the same 422 shape as for a missing field.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.ValidationFailed(typeErr.Field, "Input should be a valid "+jsonTypeName(typeErr.Type))
	}
	return apperror.ValidationFailed("", msgInvalidJSON)
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return "object"
	}
}
