package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/handler"
	"github.com/sakif/birthday-tracker/internal/model"
)

// MockRegistrar records the request it receives and returns canned results.
type MockRegistrar struct {
	Calls       int
	CapturedReq model.UserCreate
	ReturnUser  *model.User
	ReturnErr   error
}

func (m *MockRegistrar) Register(_ context.Context, req model.UserCreate) (*model.User, error) {
	m.Calls++
	m.CapturedReq = req
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnUser, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 8}))
}

func postUser(h *handler.UserHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/users/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleCreate(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestUserHandler_HandleCreate(t *testing.T) {
	logger := testLogger()

	t.Run("registers user", func(t *testing.T) {
		last, username := "Doe", "johndoe"
		mock := &MockRegistrar{ReturnUser: &model.User{
			ID:         1,
			TelegramID: 123456789,
			FirstName:  "John",
			LastName:   &last,
			Username:   &username,
			CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}}
		h := handler.NewUserHandler(mock, logger)

		rr := postUser(h, `{"telegram_id":123456789,"first_name":"John","last_name":"Doe","username":"johndoe"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		body := decodeBody(t, rr)
		assert.Equal(t, float64(1), body["id"])
		assert.Equal(t, "John", body["first_name"])
		assert.Equal(t, "Doe", body["last_name"])
		assert.Equal(t, "johndoe", body["username"])
		assert.Contains(t, body, "created_at")
		assert.NotContains(t, body, "telegram_id")

		require.NotNil(t, mock.CapturedReq.TelegramID)
		assert.Equal(t, int64(123456789), *mock.CapturedReq.TelegramID)
	})

	t.Run("absent optionals are null", func(t *testing.T) {
		mock := &MockRegistrar{ReturnUser: &model.User{ID: 2, TelegramID: 5, FirstName: "Jane"}}
		h := handler.NewUserHandler(mock, logger)

		rr := postUser(h, `{"telegram_id":5,"first_name":"Jane"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Contains(t, body, "last_name")
		assert.Nil(t, body["last_name"])
		assert.Nil(t, body["username"])
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		mock := &MockRegistrar{ReturnErr: apperror.Conflict("user")}
		h := handler.NewUserHandler(mock, logger)

		rr := postUser(h, `{"telegram_id":1,"first_name":"Bob"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, map[string]any{"detail": "User already exists"}, decodeBody(t, rr))
	})

	t.Run("service validation error is 422", func(t *testing.T) {
		mock := &MockRegistrar{ReturnErr: apperror.ValidationFailed("telegram_id", "field required")}
		h := handler.NewUserHandler(mock, logger)

		rr := postUser(h, `{"first_name":"Bob"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var body struct {
			Detail []handler.ValidationIssue `json:"detail"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Len(t, body.Detail, 1)
		assert.Equal(t, []string{"body", "telegram_id"}, body.Detail[0].Loc)
		assert.Equal(t, "missing", body.Detail[0].Type)
	})

	t.Run("unexpected error is 500 without internals", func(t *testing.T) {
		mock := &MockRegistrar{ReturnErr: errors.New("sqlite: disk I/O error at /var/db")}
		h := handler.NewUserHandler(mock, logger)

		rr := postUser(h, `{"telegram_id":1,"first_name":"Bob"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "/var/db")
	})

	decodeFailures := []struct {
		name     string
		body     string
		wantLoc  []string
		wantType string
	}{
		{"malformed json", `{"telegram_id":`, []string{"body"}, "json_invalid"},
		{"empty body", ``, []string{"body"}, "json_invalid"},
		{"string telegram_id", `{"telegram_id":"abc","first_name":"Bob"}`, []string{"body", "telegram_id"}, "value_error"},
		{"numeric first_name", `{"telegram_id":1,"first_name":42}`, []string{"body", "first_name"}, "value_error"},
	}
	for _, tt := range decodeFailures {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockRegistrar{}
			h := handler.NewUserHandler(mock, logger)

			rr := postUser(h, tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Equal(t, 0, mock.Calls, "service must not be called")

			var body struct {
				Detail []handler.ValidationIssue `json:"detail"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			require.Len(t, body.Detail, 1)
			assert.Equal(t, tt.wantLoc, body.Detail[0].Loc)
			assert.Equal(t, tt.wantType, body.Detail[0].Type)
		})
	}
}
