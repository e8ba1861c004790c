package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bharatprint/config"
	"bharatprint/identity"
	"bharatprint/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		PublicBaseURL: "https://bharatprint.test",
		CORSOrigins:   []string{"*"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
		JWT: config.JWTConfig{Secret: "server-test-secret"},
		OTP: config.OTPConfig{RateLimit: "5-M"},
	}
}

func openApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	require.NoError(t, Migrate(app.DB))
	return app
}

func TestOpen_WithoutProviders(t *testing.T) {
	app := openApp(t, testConfig())
	svc := app.Services

	assert.IsType(t, &storage.MemoryStore{}, svc.Blobs)
	assert.Equal(t, "console", svc.Sender.Name())
	assert.Nil(t, svc.Payments)
	assert.Nil(t, svc.Captcha)
	assert.Nil(t, svc.Verifier)
	assert.Nil(t, svc.Clerk)
	assert.NotNil(t, svc.Plans)
}

func TestOpen_Clerk(t *testing.T) {
	cfg := testConfig()
	cfg.Clerk.SecretKey = "sk_test_123"
	app := openApp(t, cfg)
	assert.IsType(t, &identity.ClerkUsers{}, app.Services.Clerk)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := openApp(t, testConfig())
	router, err := NewRouter(app.DB, app.Services)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/list", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/send-otp", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_LimitsOTPRoutesSeparately(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := openApp(t, testConfig())
	router, err := NewRouter(app.DB, app.Services)
	require.NoError(t, err)

	post := func(path, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusBadRequest, post("/api/auth/verify-otp", `{"phoneNumber":"9876543210"}`))
	}
	assert.Equal(t, http.StatusTooManyRequests, post("/api/auth/verify-otp", `{"phoneNumber":"9876543210","otp":"123456"}`))
	assert.Equal(t, http.StatusOK, post("/api/auth/send-otp", `{"phoneNumber":"9876543210"}`))
}

func TestNewRouter_InvalidRateLimit(t *testing.T) {
	app := openApp(t, testConfig())
	app.Services.Config.OTP.RateLimit = "lots"
	_, err := NewRouter(app.DB, app.Services)
	assert.Error(t, err)
}

func TestCORSConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)

	listed := corsConfig([]string{"https://bharatprint.app"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://bharatprint.app"}, listed.AllowOrigins)
	assert.True(t, listed.AllowCredentials)
}
