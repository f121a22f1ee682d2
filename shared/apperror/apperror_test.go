package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		code   string
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", Conflict("exists"), http.StatusConflict, "CONFLICT"},
		{"not found", NotFound("user"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden(""), http.StatusForbidden, "FORBIDDEN"},
		{"unavailable", Unavailable("mail down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown kind", &Error{Message: "x"}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.Code())
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	assert.Equal(t, "user not found", NotFound("user").Error())
}

func TestDefaultMessages(t *testing.T) {
	assert.Equal(t, "unauthorized", Unauthorized("").Message)
	assert.Equal(t, "forbidden", Forbidden("").Message)
}

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	sentinel := Unauthorized("invalid or expired refresh token")
	cause := errors.New("token is expired")

	err := fmt.Errorf("refresh: %w", sentinel.Wrap(cause))

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "token is expired")

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, appErr.Kind)
}

func TestIs_DifferentMessagesDoNotMatch(t *testing.T) {
	assert.NotErrorIs(t, Unauthorized("a"), Unauthorized("b"))
	assert.NotErrorIs(t, Conflict("a"), Validation("a"))
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", Conflict("dup")), KindConflict))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
}
