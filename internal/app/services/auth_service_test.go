package services

import (
	"context"
	"testing"
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := newTestEnv(t, false)
	env.cfg.PasswordCost = bcrypt.MinCost
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "alumni-test",
	})
	return env, NewAuthService(env.store, env.cfg, jwt, env.log)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env, svc := newAuth(t)

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "short", FullName: "Ada"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "lettersonly", FullName: "Ada"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	reg, err := svc.Register(ctx, dto.RegisterRequest{
		Email: " Ada@Example.com ", Password: "lovelace1815", FullName: "Ada Lovelace", GraduationYear: intPtr(1833),
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, models.RoleAlumni, reg.User.Role)
	assert.Equal(t, models.UserActive, reg.User.Status)
	assert.Equal(t, "Bearer", reg.Token.TokenType)
	assert.NotEmpty(t, reg.Token.AccessToken)
	require.NotNil(t, reg.User.Profile)
	assert.Equal(t, "Ada Lovelace", reg.User.Profile.FullName)

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "ADA@example.com", Password: "another123", FullName: "Imposter"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "lovelace1815"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "ADA@example.com", Password: "lovelace1815"})
	require.NoError(t, err)
	require.NotNil(t, login.User.LastLoginAt)
	assert.Equal(t, env.clock.Now(), *login.User.LastLoginAt)

	caller, err := svc.Authenticate(ctx, login.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, caller.ID)
	assert.Equal(t, models.RoleAlumni, caller.Role)

	me, err := svc.Me(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.Profile.FullName)
}

func TestSuspendedUsersAreLockedOut(t *testing.T) {
	ctx := context.Background()
	env, svc := newAuth(t)
	admin := NewAdminService(env.store, env.cfg, env.log)
	root := env.admin(t, "root")

	reg, err := svc.Register(ctx, dto.RegisterRequest{Email: "bob@example.com", Password: "builder42", FullName: "Bob"})
	require.NoError(t, err)

	_, err = admin.SuspendUser(ctx, root, reg.User.ID, dto.SuspendUserRequest{})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, reg.Token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "bob@example.com", Password: "builder42"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env, svc := newAuth(t)
	alice := env.user(t, "alice")

	_, err := svc.UpdateProfile(ctx, nil, dto.UpdateProfileRequest{FullName: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = svc.UpdateProfile(ctx, alice, dto.UpdateProfileRequest{FullName: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	view, err := svc.UpdateProfile(ctx, alice, dto.UpdateProfileRequest{
		FullName:       "Alice Smith",
		CurrentCompany: strPtr("<b>Acme</b>"),
		Bio:            strPtr("   "),
	})
	require.NoError(t, err)
	require.NotNil(t, view.Profile)
	assert.Equal(t, "Alice Smith", view.Profile.FullName)
	require.NotNil(t, view.Profile.CurrentCompany)
	assert.Equal(t, "Acme", *view.Profile.CurrentCompany)
	assert.Nil(t, view.Profile.Bio)

	profile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", profile.FullName)
}
