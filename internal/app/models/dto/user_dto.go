package dto

import (
	"time"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/google/uuid"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents an alumni sign-up
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,max=72,password"`
	FullName       string `json:"fullName" binding:"required,max=120"`
	GraduationYear *int   `json:"graduationYear" binding:"omitempty,min=1900,max=2100"`
}

// UpdateProfileRequest replaces the editable profile fields
type UpdateProfileRequest struct {
	FullName        string  `json:"fullName" binding:"required,max=120"`
	Avatar          *string `json:"avatar" binding:"omitempty,url"`
	CurrentPosition *string `json:"currentPosition" binding:"omitempty,max=120"`
	CurrentCompany  *string `json:"currentCompany" binding:"omitempty,max=120"`
	Bio             *string `json:"bio" binding:"omitempty,max=2000"`
	GraduationYear  *int    `json:"graduationYear" binding:"omitempty,min=1900,max=2100"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserView     `json:"user"`
}

// UserView is a user as shown to the user themselves and to admins.
type UserView struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Role        models.Role       `json:"role"`
	Status      models.UserStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	LastLoginAt *time.Time        `json:"lastLoginAt,omitempty"`
	Profile     *models.Profile   `json:"profile,omitempty"`
}

// NewUserView drops credentials from a user.
func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		Profile:     u.Profile,
	}
}

// UserSummary is the public face of a user embedded in other views.
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Avatar          *string   `json:"avatar,omitempty"`
	CurrentPosition *string   `json:"currentPosition,omitempty"`
	CurrentCompany  *string   `json:"currentCompany,omitempty"`
}

// NewUserSummary builds a summary from a profile; a missing profile keeps only the id.
func NewUserSummary(id uuid.UUID, p *models.Profile) *UserSummary {
	s := &UserSummary{ID: id}
	if p != nil {
		s.FullName = p.FullName
		s.Avatar = p.Avatar
		s.CurrentPosition = p.CurrentPosition
		s.CurrentCompany = p.CurrentCompany
	}
	return s
}

// UserListQuery filters the admin user list.
type UserListQuery struct {
	PageQuery
	Role   string `form:"role" binding:"omitempty,oneof=ALUMNI SUPER_ADMIN"`
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED INACTIVE PENDING_VERIFICATION"`
	Search string `form:"search" binding:"max=100"`
}
