package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/app"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler/v1"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "myhealth-test", Environment: "test", Version: "test"},
		Store: config.StoreConfig{
			Backend: config.StoreBackendMemory,
		},
		JWT: config.JWTConfig{
			Secret:          "test-secret-that-is-long-enough-for-hs256",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
			Issuer:          "myhealth-test",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Session-ID"},
			MaxAge:         time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond:     1000,
			BurstSize:             1000,
			AuthRequestsPerMinute: 600,
		},
		Session: config.SessionConfig{
			CookieName:   "myhealth_session",
			CookieMaxAge: time.Hour,
		},
		Simulation: config.SimulationConfig{
			ChatReplyDelay:   time.Hour,
			ProgressInterval: time.Hour,
			RandomSeed:       42,
		},
		Media: config.MediaConfig{
			Backend:        config.MediaBackendMemory,
			MaxUploadBytes: 1 << 20,
		},
		Events: config.EventsConfig{
			Backend: config.EventsBackendLog,
		},
	}
}

type client struct {
	t         *testing.T
	router    http.Handler
	sessionID string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	portal, err := app.New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = portal.Shutdown(ctx)
	})

	return &client{t: t, router: portal.Router}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "myhealth_session", Value: c.sessionID})
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if id := rec.Header().Get(v1.SessionIDHeader); id != "" {
		c.sessionID = id
	}
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp v1.APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func TestRouter_Probes(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", nil).Code)

	rec := c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_AssignsSession(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	id := rec.Header().Get(v1.SessionIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "myhealth_session" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	info := decodeData[map[string]any](t, rec)
	assert.Equal(t, id, info["session_id"])
	assert.Equal(t, false, info["authenticated"])

	// The same cookie keeps the same session.
	rec = c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, id, rec.Header().Get(v1.SessionIDHeader))
}

func TestRouter_RejectsNonUUIDSessionHeader(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(v1.SessionIDHeader, "../portal")
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "../portal", rec.Header().Get(v1.SessionIDHeader))
}

func TestRouter_AuthFlow(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":       "jane@example.com",
		"password":    "correct-horse",
		"full_name":   "Jane Doe",
		"national_id": "1234567890",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profile := decodeData[map[string]any](t, rec)
	assert.Equal(t, "jane@example.com", profile["email"])
	assert.NotEmpty(t, profile["health_id"])
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "JANE@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeData[struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}](t, rec)
	assert.NotEmpty(t, login.Tokens.AccessToken)

	rec = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData[map[string]any](t, rec)
	assert.Equal(t, "jane@example.com", me["email"])

	rec = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuditRequiresBearer(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/audit", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/patients/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/patients", map[string]any{"age": 30, "sex": "male"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr v1.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.NotEmpty(t, verr.Fields)
}

func TestRouter_DrugCheck(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/drug-checks", map[string]any{
		"drugs": []string{"Aspirin", "Ibuprofen"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "high", decodeData[map[string]any](t, rec)["risk_level"])

	rec = c.do(http.MethodGet, "/api/v1/drug-checks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]map[string]any](t, rec), 1)
}

func TestRouter_SessionsAreIsolated(t *testing.T) {
	a := newClient(t)
	rec := a.do(http.MethodPost, "/api/v1/medications", map[string]string{"name": "Aspirin"})
	require.Less(t, rec.Code, 300, rec.Body.String())

	// A second visitor on the same server starts with an empty list.
	b := &client{t: t, router: a.router}
	rec = b.do(http.MethodGet, "/api/v1/medications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]string](t, rec))

	rec = a.do(http.MethodGet, "/api/v1/medications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Aspirin"}, decodeData[[]string](t, rec))
}

func TestRouter_FallsBackToLegacyEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/auth.php", map[string]string{
		"action":   "login",
		"email":    "a@b.com",
		"password": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"success":true`), rec.Body.String())

	rec = c.do(http.MethodGet, "/api/unknown.php", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Endpoint not found")
}

func TestRouter_WrongMethodOnAPIRouteIs405(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPut, "/api/v1/patients", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Endpoint not found")

	rec = c.do(http.MethodGet, "/api/records.php", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
