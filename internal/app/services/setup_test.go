package services

import (
	"context"
	"testing"
	"time"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	store *memory.Store
	clock *clock
	cfg   Config
	log   zerolog.Logger
}

func newTestEnv(t *testing.T, requireApproval bool) *testEnv {
	t.Helper()
	c := &clock{t: baseTime}
	return &testEnv{
		store: memory.NewStore(),
		clock: c,
		cfg:   Config{RequireApproval: requireApproval, Now: c.Now},
		log:   zerolog.Nop(),
	}
}

func (e *testEnv) user(t *testing.T, name string) *appAuth.Caller {
	return e.userWithRole(t, name, models.RoleAlumni)
}

func (e *testEnv) admin(t *testing.T, name string) *appAuth.Caller {
	return e.userWithRole(t, name, models.RoleSuperAdmin)
}

func (e *testEnv) userWithRole(t *testing.T, name string, role models.Role) *appAuth.Caller {
	t.Helper()
	id := uuid.New()
	u := &models.User{
		ID:        id,
		Email:     name + "@example.com",
		Password:  "x",
		Role:      role,
		Status:    models.UserActive,
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	p := &models.Profile{UserID: id, FullName: name, UpdatedAt: e.clock.Now()}
	require.NoError(t, e.store.Users().Create(context.Background(), u, p))
	return &appAuth.Caller{ID: id, Role: role}
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
