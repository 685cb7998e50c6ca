package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appModels "github.com/alumniconnect/platform/internal/app/models"
	appRepos "github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/auth"
	"github.com/alumniconnect/platform/internal/pkg/helpers"
)

// Options controls the default super admin account.
type Options struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	// PasswordCost overrides the bcrypt cost; 0 means auth.BcryptCost.
	PasswordCost int
	Now          func() time.Time
}

// DefaultCategories are the forum categories every installation starts with.
var DefaultCategories = []string{
	"General",
	"Career Advice",
	"Events",
	"Job Opportunities",
	"Mentorship",
	"Announcements",
}

// CreateDefaultData creates the default forum categories and the super admin if they
// don't exist. It is safe to run repeatedly; failures are collected, not fatal.
func CreateDefaultData(ctx context.Context, store appRepos.Store, opts Options, lgr zerolog.Logger) error {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	lgr.Info().Msg("Checking/Creating default data (categories, super admin)...")

	var finalErr error
	if err := createCategories(ctx, store, opts.Now(), lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := createAdmin(ctx, store, opts, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	return finalErr
}

func createCategories(ctx context.Context, store appRepos.Store, now time.Time, lgr zerolog.Logger) error {
	existing, err := store.Categories().List(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing categories")
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Slug] = true
	}

	var finalErr error
	for _, name := range DefaultCategories {
		slug := helpers.Slugify(name)
		if have[slug] {
			continue
		}
		err := store.Categories().Create(ctx, &appModels.Category{
			ID:        uuid.New(),
			Name:      name,
			Slug:      slug,
			CreatedAt: now,
		})
		if err != nil && !errors.Is(err, appRepos.ErrDuplicate) {
			lgr.Error().Err(err).Str("category", name).Msg("Error creating category")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Debug().Str("category", name).Msg("Category created")
	}
	return finalErr
}

func createAdmin(ctx context.Context, store appRepos.Store, opts Options, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("No admin credentials given, skipping super admin")
		return nil
	}

	_, err := store.Users().GetByEmail(ctx, email)
	if err == nil {
		lgr.Info().Str("email", email).Msg("Super admin already exists")
		return nil
	}
	if !errors.Is(err, appRepos.ErrNotFound) {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	cost := opts.PasswordCost
	if cost == 0 {
		cost = auth.BcryptCost
	}
	hash, err := auth.HashPasswordWithCost(opts.AdminPassword, cost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	now := opts.Now()
	name := opts.AdminName
	if name == "" {
		name = "Platform Admin"
	}
	user := &appModels.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hash,
		Role:      appModels.RoleSuperAdmin,
		Status:    appModels.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	profile := &appModels.Profile{UserID: user.ID, FullName: name}
	if err := store.Users().Create(ctx, user, profile); err != nil && !errors.Is(err, appRepos.ErrDuplicate) {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}
	lgr.Info().Str("email", email).Msg("Super admin created")
	return nil
}
