package auth

import (
	"context"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// Caller is the verified identity behind a request. A nil *Caller is an
// anonymous request.
type Caller struct {
	ID   uuid.UUID
	Role models.Role
}

// IsAdmin reports whether the caller holds the SUPER_ADMIN role.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == models.RoleSuperAdmin
}

// Is reports whether the caller is the user with the given id.
func (c *Caller) Is(id uuid.UUID) bool {
	return c != nil && c.ID == id
}

// RequireAuthenticated fails when the request carries no caller.
func RequireAuthenticated(caller *Caller) error {
	if caller == nil || caller.ID == uuid.Nil {
		return apperrors.NewUnauthenticatedError("authentication required")
	}
	return nil
}

// RequireRole fails when the caller is absent or does not hold role.
func RequireRole(caller *Caller, role models.Role) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	if caller.Role != role {
		return apperrors.NewAuthorizationError("this action requires the " + string(role) + " role").
			WithDetail("requiredRole", string(role))
	}
	return nil
}

// RequireAdmin is RequireRole for SUPER_ADMIN.
func RequireAdmin(caller *Caller) error {
	return RequireRole(caller, models.RoleSuperAdmin)
}

// RequireOwner fails unless the caller is the owner of the named resource.
func RequireOwner(caller *Caller, ownerID uuid.UUID, resource string) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	if caller.ID != ownerID {
		return apperrors.NewAuthorizationError("only the owner may modify this " + resource).
			WithDetail("resource", resource)
	}
	return nil
}

// RequireOwnerOrAdmin lets administrators act on resources they do not own.
func RequireOwnerOrAdmin(caller *Caller, ownerID uuid.UUID, resource string) error {
	if caller.IsAdmin() {
		return nil
	}
	return RequireOwner(caller, ownerID, resource)
}

type callerKey struct{}

// WithCaller stores the caller on ctx.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored on ctx, or nil.
func CallerFrom(ctx context.Context) *Caller {
	caller, _ := ctx.Value(callerKey{}).(*Caller)
	return caller
}
