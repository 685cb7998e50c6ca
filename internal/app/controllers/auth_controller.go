package controllers

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService is the identity surface the auth endpoints need.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, caller *appAuth.Caller) (*dto.UserView, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, caller *appAuth.Caller, req dto.UpdateProfileRequest) (*dto.UserView, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		ac.logger.Debug().Err(err).Msg("Registration failed")
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Registration successful")
}

// Login handles user login
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.authService.Login(c.Request.Context(), req)
	reply(c, res, err)
}

// Me returns the signed-in user
func (ac *AuthController) Me(c *gin.Context) {
	res, err := ac.authService.Me(c.Request.Context(), middleware.Caller(c))
	reply(c, res, err)
}

// UpdateProfile replaces the signed-in user's profile
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := ac.authService.UpdateProfile(c.Request.Context(), middleware.Caller(c), req)
	reply(c, res, err)
}

// GetProfile returns any user's public profile
func (ac *AuthController) GetProfile(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := ac.authService.GetProfile(c.Request.Context(), id)
	reply(c, res, err)
}
