package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers stay short and consistent:
//   writeJSON(w, http.StatusOK, user.Public())
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response has a "detail" key. For most errors it is a string:
//   {"detail": "User already exists"}
//
// For validation failures it lists the rejected inputs, so a client can point
// at the exact field:
//   {"detail": [{"loc": ["body", "telegram_id"], "msg": "field required", "type": "missing"}]}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/birthday-tracker/internal/apperror"
)

// DetailResponse is the error body for 404, 409 and 500.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ValidationErrorResponse is the 422 body.
type ValidationErrorResponse struct {
	Detail []ValidationIssue `json:"detail"`
}

// ValidationIssue describes one rejected input.
type ValidationIssue struct {
	Loc  []string `json:"loc" required:"true"`  // where: "body", then the field name
	Msg  string   `json:"msg" required:"true"`  // human-readable reason
	Type string   `json:"type" required:"true"` // machine-readable kind: missing, json_invalid, value_error
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and the status code must be set BEFORE the body is written. The
// first w.Write() (which Encode calls) sends the headers, and any change after
// that is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, only logging is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation → 422 Unprocessable Entity
//	apperror.ErrNotFound   → 404 Not Found
//	apperror.ErrConflict   → 409 Conflict ("User already exists")
//	anything else          → 500 with a generic message
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer does not know about HTTP. It reports *what* went wrong
// (a duplicate Telegram id); this function decides how HTTP spells it. The
// seeder calls the same repository code and never sees a status code.
//
// errors.Is() UNWRAPPING:
// errors.Is walks the whole chain via Unwrap(), so a wrapped error still maps:
//
//	service returns: fmt.Errorf("registering user: %w", apperror.Conflict("user"))
//	which wraps:     AppError{Err: ErrConflict, Message: "User already exists"}
//	errors.Is walks: outer error → AppError → ErrConflict ✓ 409
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Detail: []ValidationIssue{issueFor(appErr)},
			})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, DetailResponse{Detail: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, DetailResponse{Detail: appErr.Message})
			return
		}
	}

	// Unknown error: NEVER expose its text to the client. It may contain SQL,
	// file paths or connection strings. The handler has already logged it.
	writeJSON(w, http.StatusInternalServerError, DetailResponse{
		Detail: "Internal Server Error",
	})
}

func issueFor(appErr *apperror.AppError) ValidationIssue {
	loc := []string{"body"}
	if appErr.Field != "" {
		loc = append(loc, appErr.Field)
	}

	issueType := "value_error"
	switch appErr.Message {
	case msgFieldRequired:
		issueType = "missing"
	case msgInvalidJSON:
		issueType = "json_invalid"
	}

	return ValidationIssue{Loc: loc, Msg: appErr.Message, Type: issueType}
}
