package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad", nil), http.StatusBadRequest},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{State("stale"), http.StatusConflict},
		{&Error{Kind: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), string(tc.err.Kind))
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("confirm booking: %w", State("Only pending bookings can be confirmed"))

	assert.ErrorIs(t, err, ErrState)
	assert.NotErrorIs(t, err, ErrConflict)

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "Only pending bookings can be confirmed", appErr.Message)
}

func TestWrapKeepsClientMessage(t *testing.T) {
	cause := errors.New("status mismatch")
	err := State("Booking was already processed").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Booking was already processed", err.Message)
	assert.Contains(t, err.Error(), "status mismatch")
}

func TestAsOnPlainError(t *testing.T) {
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
