package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/alumniconnect/platform/internal/app/models"
	appRepos "github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/app/repositories/memory"
	"github.com/alumniconnect/platform/internal/pkg/auth"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	opts := Options{
		AdminEmail:    " Admin@Example.com ",
		AdminPassword: "Admin123!",
		PasswordCost:  bcrypt.MinCost,
		Now:           func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}

	require.NoError(t, CreateDefaultData(ctx, store, opts, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store, opts, zerolog.Nop()))

	cats, err := store.Categories().List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(DefaultCategories))

	admin, err := store.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, appModels.RoleSuperAdmin, admin.Role)
	assert.Equal(t, appModels.UserActive, admin.Status)
	assert.True(t, auth.CheckPassword(admin.Password, "Admin123!"))

	n, err := store.Users().Count(ctx, appRepos.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateDefaultDataWithoutAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, CreateDefaultData(ctx, store, Options{}, zerolog.Nop()))

	n, err := store.Users().Count(ctx, appRepos.UserFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
