package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := New(NotFound, "Order not found")
	wrapped := fmt.Errorf("load order: %w", base)

	require.Equal(t, NotFound, KindOf(wrapped))
	require.True(t, Is(wrapped, NotFound))
	require.Equal(t, "Order not found", Message(wrapped))
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset")

	require.Equal(t, Internal, KindOf(err))
	require.Equal(t, "internal server error", Message(err))
	require.Equal(t, http.StatusInternalServerError, Status(KindOf(err)))
}

func TestWrapKeepsCauseHidden(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(Internal, "Failed to create order", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "Failed to create order", Message(err))
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		AuthenticationMissing: http.StatusUnauthorized,
		AuthenticationInvalid: http.StatusUnauthorized,
		ValidationFailed:      http.StatusBadRequest,
		NotFound:              http.StatusNotFound,
		Forbidden:             http.StatusForbidden,
		Conflict:              http.StatusConflict,
		Internal:              http.StatusInternalServerError,
	}
	for kind, want := range cases {
		require.Equal(t, want, Status(kind), string(kind))
	}
}
