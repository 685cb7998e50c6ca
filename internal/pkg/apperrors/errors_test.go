package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsWrapKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"not found", NewNotFoundError("event", "42"), ErrResourceNotFound, "not_found"},
		{"authorization", NewAuthorizationError("nope"), ErrPermissionDenied, "authorization"},
		{"unauthenticated", NewUnauthenticatedError("login"), ErrUnauthenticated, "unauthenticated"},
		{"conflict", NewConflictError("dup"), ErrConflict, "conflict"},
		{"state", NewStateError("bad"), ErrInvalidState, "state"},
		{"capacity", NewCapacityError("full"), ErrCapacityExceeded, "capacity"},
		{"validation", NewValidationError("reason", "required"), ErrValidationFailed, "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.want, Kind(tt.err))
			assert.True(t, IsDomainError(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("register: %w", NewCapacityError("event is full"))
	assert.Equal(t, "capacity", Kind(err))
	assert.True(t, Is(err, ErrConflict, ErrCapacityExceeded))
}

func TestInfrastructureErrorsAreNotDomain(t *testing.T) {
	err := fmt.Errorf("query events: %w", errors.New("connection reset"))
	assert.Equal(t, "internal", Kind(err))
	assert.False(t, IsDomainError(err))
	assert.Equal(t, "ok", Kind(nil))
}

func TestNotFoundCarriesIdentifiers(t *testing.T) {
	err := NewNotFoundError("donation", "abc")

	var custom *CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, "donation not found", custom.Error())
	assert.Equal(t, "donation", custom.Details["entity"])
	assert.Equal(t, "abc", custom.Details["id"])
	assert.Equal(t, CodeNotFound, custom.Code)
}

func TestAuthErrorsRefineKinds(t *testing.T) {
	assert.Equal(t, "unauthenticated", Kind(NewCustomError(ErrInvalidCredentials, "bad password")))
	assert.Equal(t, "unauthenticated", Kind(ErrTokenExpired))
	assert.Equal(t, "authorization", Kind(fmt.Errorf("login: %w", ErrAccountDisabled)))
	assert.ErrorIs(t, ErrTokenInvalid, ErrUnauthenticated)
}
