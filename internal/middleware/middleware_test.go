package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
}

type errorBody struct {
	Success bool            `json:"success"`
	Error   dto.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestHandleAPIErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewNotFoundError("event", "1"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewAuthorizationError("no"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.NewUnauthenticatedError("login"), http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{apperrors.NewConflictError("dup"), http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.NewStateError("bad"), http.StatusConflict, dto.ErrorCodeInvalidState},
		{apperrors.NewCapacityError("full"), http.StatusConflict, dto.ErrorCodeCapacityExceeded},
		{apperrors.NewValidationError("title", "required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.NewCustomError(apperrors.ErrAccountDisabled, "suspended"), http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{apperrors.NewCustomError(apperrors.ErrTokenExpired, "expired"), http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{fmt.Errorf("query: %w", errors.New("connection reset")), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestErrorBodyCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, fmt.Errorf("register: %w", apperrors.NewCapacityError("event is full").WithDetail("eventId", "e-1")))
	detail := decodeError(t, w)
	assert.Equal(t, "event is full", detail.Message)
	assert.Equal(t, map[string]interface{}{"eventId": "e-1"}, detail.Details)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, errors.New("password=hunter2 leaked"))
	assert.NotContains(t, w.Body.String(), "hunter2")
}

type fakeAuthenticator map[string]*appAuth.Caller

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*appAuth.Caller, error) {
	if token == "disabled" {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is suspended")
	}
	caller, ok := f[token]
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "invalid token")
	}
	return caller, nil
}

func authRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		caller := Caller(c)
		if caller == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		if appAuth.CallerFrom(c.Request.Context()) != caller {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, caller.ID.String())
	}
	r.GET("/required", m.JWTAuth(), whoami)
	r.GET("/optional", m.OptionalAuth(), whoami)
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleSuperAdmin), whoami)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	alumni := &appAuth.Caller{ID: uuid.New(), Role: models.RoleAlumni}
	admin := &appAuth.Caller{ID: uuid.New(), Role: models.RoleSuperAdmin}
	r := authRouter(NewAuthMiddleware(fakeAuthenticator{"alumni": alumni, "admin": admin}))

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("/required", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/required", "Bearer nope").Code)
	assert.Equal(t, http.StatusForbidden, do("/required", "Bearer disabled").Code)

	w := do("/required", "Bearer alumni")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alumni.ID.String(), w.Body.String())

	assert.Equal(t, "anonymous", do("/optional", "").Body.String())
	assert.Equal(t, alumni.ID.String(), do("/optional", "Bearer alumni").Body.String())
	assert.Equal(t, http.StatusUnauthorized, do("/optional", "Bearer nope").Code)

	assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer alumni").Code)
	assert.Equal(t, http.StatusOK, do("/admin", "Bearer admin").Code)
}

func TestBindJSONReportsFields(t *testing.T) {
	r := gin.New()
	r.POST("/register", func(c *gin.Context) {
		var req dto.RegisterRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))
		return w
	}

	w := post(`{"email":"a@example.com","password":"lettersonly","fullName":"Ada"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "password", detail.Field)

	assert.Equal(t, http.StatusBadRequest, post(`{not json`).Code)
	assert.Equal(t, http.StatusNoContent, post(`{"email":"a@example.com","password":"lovelace1815","fullName":"Ada"}`).Code)
}

func TestUUIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/events/:id", func(c *gin.Context) {
		id, ok := UUIDParam(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+id.String(), nil))
	assert.Equal(t, id.String(), w.Body.String())
}

func TestRateLimiterOnlyLimitsMutations(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(limiter.Middleware())
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/x", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost))
	assert.Equal(t, http.StatusOK, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	assert.Equal(t, http.StatusOK, do(http.MethodGet))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do(http.MethodPost))
}
