package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/auth"
	"github.com/alumniconnect/platform/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService handles sign-up, sign-in and token verification
type AuthService struct {
	base
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(store repositories.Store, cfg Config, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		base:       newBase(store, cfg, logger, "auth"),
		jwtService: jwtService,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword checks if password meets requirements
func validatePassword(password string) error {
	if !validation.StrongPassword(password) {
		return apperrors.NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters and contain a letter and a digit", validation.PasswordMinLength))
	}
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	if s.cfg.PasswordCost > 0 {
		return auth.HashPasswordWithCost(password, s.cfg.PasswordCost)
	}
	return auth.HashPassword(password)
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(pair.ExpiresIn),
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
		},
		User: dto.NewUserView(user),
	}, nil
}

// Register creates an ACTIVE alumni account with its profile and signs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (_ *dto.AuthResponse, err error) {
	ctx, span := s.startSpan(ctx, "auth.Register")
	defer func() { endSpan(span, err) }()

	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "email is required")
	}
	if fullName == "" {
		return nil, apperrors.NewValidationError("fullName", "full name is required")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hashed,
		Role:      models.RoleAlumni,
		Status:    models.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	profile := &models.Profile{
		UserID:         user.ID,
		FullName:       fullName,
		GraduationYear: req.GraduationYear,
		UpdatedAt:      now,
	}
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user, profile); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.NewConflictError("an account with this email already exists").
					WithDetail("email", email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logOutcome(err, "Registration rejected", map[string]interface{}{"email": email})
		return nil, err
	}
	user.Profile = profile

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return s.issue(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (_ *dto.AuthResponse, err error) {
	ctx, span := s.startSpan(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	invalid := apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password").
		WithCode(apperrors.CodeUnauthenticated)

	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Str("userID", user.ID.String()).Msg("Login with wrong password")
		return nil, invalid
	}
	if user.Status != models.UserActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is "+strings.ToLower(string(user.Status))).
			WithCode(apperrors.CodeForbidden)
	}

	now := s.now()
	s.bestEffort(ctx, "touch login", func(ctx context.Context) error {
		return s.store.Users().TouchLogin(ctx, user.ID, now)
	})
	user.LastLoginAt = &now

	s.logger.Info().Str("userID", user.ID.String()).Msg("User logged in")
	return s.issue(user)
}

// Authenticate turns a bearer token into a Caller. The account status is
// re-read so suspended users are locked out before their token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*appAuth.Caller, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, "token has expired").
				WithCode(apperrors.CodeUnauthenticated)
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "invalid token").
			WithCode(apperrors.CodeUnauthenticated)
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "account no longer exists").
				WithCode(apperrors.CodeUnauthenticated)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Status != models.UserActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is "+strings.ToLower(string(user.Status))).
			WithCode(apperrors.CodeForbidden)
	}
	return &appAuth.Caller{ID: user.ID, Role: user.Role}, nil
}

// Me returns the caller's account with its profile.
func (s *AuthService) Me(ctx context.Context, caller *appAuth.Caller) (*dto.UserView, error) {
	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return nil, notFound(err, "user", caller.ID)
	}
	return dto.NewUserView(user), nil
}

// GetProfile returns the public summary of any user.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profiles, err := s.store.Users().Profiles(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p, ok := profiles[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", userID)
	}
	return p, nil
}

// UpdateProfile replaces the caller's editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *appAuth.Caller, req dto.UpdateProfileRequest) (_ *dto.UserView, err error) {
	ctx, span := s.startSpan(ctx, "auth.UpdateProfile")
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("fullName", "full name is required")
	}

	var user *models.User
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		profile := &models.Profile{
			UserID:          caller.ID,
			FullName:        fullName,
			Avatar:          trimOptional(req.Avatar),
			CurrentPosition: cleanText(req.CurrentPosition),
			CurrentCompany:  cleanText(req.CurrentCompany),
			Bio:             cleanText(req.Bio),
			GraduationYear:  req.GraduationYear,
			UpdatedAt:       s.now(),
		}
		if err := tx.Users().UpdateProfile(ctx, profile); err != nil {
			return notFound(err, "user", caller.ID)
		}
		u, err := tx.Users().GetByID(ctx, caller.ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update profile")
	}
	return dto.NewUserView(user), nil
}
