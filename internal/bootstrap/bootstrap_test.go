package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alumniconnect/platform/internal/app/repositories/memory"
	"github.com/alumniconnect/platform/internal/config"
	"github.com/alumniconnect/platform/internal/seed"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a apiClient) login(email, password string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code)
	var auth struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	return auth.Token.AccessToken
}

func newTestAPI(t *testing.T) apiClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Database.Driver = "memory"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", AccessTokenExpiration: "15m", RefreshTokenExpiration: "24h", Issuer: "alumni-test"}
	cfg.Moderation.RequireApproval = true

	store := memory.NewStore()
	require.NoError(t, seed.CreateDefaultData(context.Background(), store, seed.Options{
		AdminEmail:    "admin@example.com",
		AdminPassword: "Admin123!",
		PasswordCost:  bcrypt.MinCost,
	}, zerolog.Nop()))

	deps := BuildDependencies(cfg, store, zerolog.Nop(), "test")
	router, err := SetupRouter(cfg, deps)
	require.NoError(t, err)
	return apiClient{t: t, router: router}
}

func TestEventApprovalFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "ada@example.com", "password": "Passw0rd!", "fullName": "Ada",
	})
	require.Equal(t, http.StatusCreated, code)
	organizer := api.login("ada@example.com", "Passw0rd!")
	admin := api.login("admin@example.com", "Admin123!")

	start := time.Now().Add(48 * time.Hour).UTC()
	code, env := api.do(http.MethodPost, "/api/v1/events", organizer, map[string]interface{}{
		"title":     "Reunion",
		"type":      "MEETUP",
		"startDate": start,
		"endDate":   start.Add(3 * time.Hour),
		"capacity":  1,
	})
	require.Equal(t, http.StatusCreated, code)
	var event struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, "PENDING_APPROVAL", event.Status)

	code, env = api.do(http.MethodPost, "/api/v1/admin/events/"+event.ID+"/approve", organizer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "AUTH_009", env.Error.Code)

	code, _ = api.do(http.MethodPost, "/api/v1/admin/events/"+event.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/v1/events/"+event.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/v1/events/"+event.ID+"/register", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/api/v1/events/"+event.ID+"/register", admin, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodPost, "/api/v1/events/"+event.ID+"/register", organizer, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "RES_006", env.Error.Code)
}

func TestValidationAndMalformedIDs(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short", "fullName": "X",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VAL_001", env.Error.Code)

	code, _ = api.do(http.MethodGet, "/api/v1/events/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_001", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
