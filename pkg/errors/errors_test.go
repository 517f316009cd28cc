package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput,
		ErrUnauthorized, ErrForbidden, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("socket closed")}
	assert.Contains(t, withInner.Error(), "INTERNAL_ERROR")
	assert.Contains(t, withInner.Error(), "socket closed")

	bare := &AppError{Code: "NOT_FOUND", Message: "product p_001 not found"}
	assert.Equal(t, "NOT_FOUND: product p_001 not found", bare.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "p_042")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "product p_042 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("user", "email", "a@b.com")
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Contains(t, err.Message, "a@b.com")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("rating must be one of 1..5")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "rating must be one of 1..5", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUnauthorizedAndForbidden(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no token").Status)
	assert.True(t, errors.Is(Unauthorized("x"), ErrUnauthorized))
	assert.Equal(t, http.StatusForbidden, Forbidden("sellers only").Status)
	assert.True(t, errors.Is(Forbidden("x"), ErrForbidden))
}

func TestInternal_CarriesUnderlyingMessage(t *testing.T) {
	inner := fmt.Errorf("server selection timeout")
	err := Internal(inner)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, "server selection timeout", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, inner))
}

func TestInternal_NilError(t *testing.T) {
	err := Internal(nil)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil))

	nf := NotFound("product", "p_001")
	assert.Same(t, nf, FromStore(nf))

	wrapped := fmt.Errorf("find product: %w", nf)
	assert.Equal(t, wrapped, FromStore(wrapped))

	raw := fmt.Errorf("connection reset")
	got := FromStore(raw)
	var appErr *AppError
	require.True(t, errors.As(got, &appErr))
	assert.Equal(t, "connection reset", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("item", "1"), http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
