package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromResponse_Message(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    ErrorCode
		message string
	}{
		{name: "detail", status: 400, body: `{"detail":"Plan name already exists"}`, code: CodeServerError, message: "Plan name already exists"},
		{name: "detail важнее error", status: 400, body: `{"error":"second","detail":"first"}`, code: CodeServerError, message: "first"},
		{name: "error строкой", status: 500, body: `{"error":"database is locked"}`, code: CodeServerError, message: "database is locked"},
		{name: "error объектом", status: 422, body: `{"error":{"code":"X","message":"Invalid plan"}}`, code: CodeServerError, message: "Invalid plan"},
		{name: "message", status: 409, body: `{"message":"Conflict here"}`, code: CodeServerError, message: "Conflict here"},
		{name: "список ошибок", status: 422, body: `{"detail":[{"loc":["price"],"msg":"too low"},{"msg":"bad type"}]}`, code: CodeServerError, message: "too low; bad type"},
		{name: "не json", status: 502, body: "upstream timeout", code: CodeServerError, message: "upstream timeout"},
		{name: "пустое тело", status: 503, body: "", code: CodeServerError, message: http.StatusText(503)},
		{name: "404", status: 404, body: `{"detail":"Plan not found"}`, code: CodeNotFound, message: "Plan not found"},
		{name: "403", status: 403, body: `{}`, code: CodeForbidden, message: http.StatusText(403)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.status, err.HTTPCode)
		})
	}
}

func TestFromResponse_Unauthorized(t *testing.T) {
	err := FromResponse(http.StatusUnauthorized, []byte(`{"detail":"Token expired"}`))
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, "Token expired", err.Details)
	// предопределённая ошибка не меняется
	assert.Nil(t, ErrSessionExpired.Details)

	assert.Same(t, ErrSessionExpired, FromResponse(http.StatusUnauthorized, nil))
}

func TestIs_ComparesCode(t *testing.T) {
	wrapped := fmt.Errorf("load plans: %w", ErrSessionExpired.WithDetails("x"))
	assert.True(t, Is(wrapped, ErrSessionExpired))
	assert.False(t, Is(wrapped, ErrNotAuthenticated))
	assert.False(t, Is(errors.New("plain"), ErrSessionExpired))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{NetworkFailure(errors.New("dial tcp"), "fetching plans"), KindNetworkFailure},
		{ErrSessionExpired, KindSessionExpired},
		{ErrNotAuthenticated, KindSessionExpired},
		{ValidationError(map[string]string{"name": "required"}), KindValidationFailure},
		{ErrEmptySelection, KindValidationFailure},
		{ErrActionInProgress, KindValidationFailure},
		{ServerError(500, ""), KindServerError},
		{ServerError(404, "gone"), KindServerError},
		{DecodeFailed(errors.New("eof"), "listing plans"), KindServerError},
		{ErrInvalidCredentials, KindServerError},
		{BatchPartialFailure(map[int64]error{1: errors.New("boom")}), KindServerError},
		{context.Canceled, KindInternal},
		{InternalError(errors.New("nil map")), KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
	}
}

func TestNetworkFailure_Message(t *testing.T) {
	cause := errors.New("connection refused")
	err := NetworkFailure(cause, "fetching plans")
	assert.Equal(t, "Network error during fetching plans. Please try again.", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestBatchPartialFailure(t *testing.T) {
	err := BatchPartialFailure(map[int64]error{
		2: errors.New("server error"),
		5: errors.New("timeout"),
	})
	require.Equal(t, CodeBatchPartialFailure, err.Code)
	assert.Equal(t, "Failed to delete 2 of the selected item(s)", err.Message)
	assert.Equal(t, map[string]string{"2": "server error", "5": "timeout"}, err.Details)
}

func TestAppError_JSONHidesCause(t *testing.T) {
	data, err := InternalError(errors.New("secret dsn")).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","domain":"system","message":"Internal error"}`, string(data))
}
