package auth

import (
	"context"
	"testing"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuthenticated(t *testing.T) {
	assert.ErrorIs(t, RequireAuthenticated(nil), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, RequireAuthenticated(&Caller{}), apperrors.ErrUnauthenticated)
	assert.NoError(t, RequireAuthenticated(&Caller{ID: uuid.New(), Role: models.RoleAlumni}))
}

func TestRequireRole(t *testing.T) {
	alumni := &Caller{ID: uuid.New(), Role: models.RoleAlumni}
	admin := &Caller{ID: uuid.New(), Role: models.RoleSuperAdmin}

	assert.ErrorIs(t, RequireAdmin(nil), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, RequireAdmin(alumni), apperrors.ErrPermissionDenied)
	assert.NoError(t, RequireAdmin(admin))
	assert.NoError(t, RequireRole(alumni, models.RoleAlumni))
}

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()
	caller := &Caller{ID: owner, Role: models.RoleAlumni}
	stranger := &Caller{ID: uuid.New(), Role: models.RoleAlumni}
	admin := &Caller{ID: uuid.New(), Role: models.RoleSuperAdmin}

	assert.NoError(t, RequireOwner(caller, owner, "event"))
	assert.ErrorIs(t, RequireOwner(stranger, owner, "event"), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, RequireOwner(nil, owner, "event"), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, RequireOwner(admin, owner, "event"), apperrors.ErrPermissionDenied)
	assert.NoError(t, RequireOwnerOrAdmin(admin, owner, "event"))
}

func TestCallerContext(t *testing.T) {
	assert.Nil(t, CallerFrom(context.Background()))

	c := &Caller{ID: uuid.New(), Role: models.RoleAlumni}
	assert.Same(t, c, CallerFrom(WithCaller(context.Background(), c)))
}
