package middleware

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// Authenticator resolves a bearer token to a live caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*appAuth.Caller, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

func (m *AuthMiddleware) attach(c *gin.Context, header string) bool {
	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		abortWithError(c, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "invalid token format").
			WithCode(apperrors.CodeUnauthenticated))
		return false
	}

	caller, err := m.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		abortWithError(c, err)
		return false
	}

	c.Set(callerKey, caller)
	c.Request = c.Request.WithContext(appAuth.WithCaller(c.Request.Context(), caller))
	return true
}

// JWTAuth rejects requests without a valid token for an ACTIVE account.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, apperrors.NewUnauthenticatedError("authentication required"))
			return
		}
		if m.attach(c, header) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous
// requests through. A token that is sent but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if m.attach(c, header) {
			c.Next()
		}
	}
}

// RoleRequired middleware to check if user has required role
func (m *AuthMiddleware) RoleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := appAuth.RequireRole(Caller(c), role); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated caller, or nil for anonymous requests.
func Caller(c *gin.Context) *appAuth.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*appAuth.Caller)
	return caller
}
