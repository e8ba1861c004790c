package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bharatprint/model"
	"bharatprint/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, sub string, exp time.Time, key string) string {
	t.Helper()
	claims := model.AccessClaims{
		Phone: "+919000000001",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Detail  string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Detail
}

func TestAccessTokenMiddleware(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "+919000000001")

	router := gin.New()
	router.GET("/me", AccessTokenMiddleware(db, secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})

	future := time.Now().Add(time.Hour)
	cases := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{"missing header", "", http.StatusUnauthorized, "No authorization header"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token"},
		{"wrong key", "Bearer " + sign(t, user.ID, future, "other"), http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + sign(t, user.ID, time.Now().Add(-time.Minute), secret), http.StatusUnauthorized, "Token expired"},
		{"unknown user", "Bearer " + sign(t, "nobody", future, secret), http.StatusUnauthorized, "User not found"},
		{"valid", "Bearer " + sign(t, user.ID, future, secret), http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.errMsg != "" {
				assert.Equal(t, tc.errMsg, errorOf(t, w))
				return
			}
			assert.JSONEq(t, `{"id":"`+user.ID+`"}`, w.Body.String())
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	serve := func(key, header string) int {
		router := gin.New()
		router.POST("/admin", AdminMiddleware(key), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if header != "" {
			req.Header.Set("X-Admin-Key", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, serve("", ""))
	assert.Equal(t, http.StatusNoContent, serve("k3y", "k3y"))
	assert.Equal(t, http.StatusForbidden, serve("k3y", "wrong"))
	assert.Equal(t, http.StatusForbidden, serve("k3y", ""))
}

func TestRateLimit(t *testing.T) {
	_, err := RateLimit("lots")
	assert.Error(t, err)

	limit, err := RateLimit("2-M")
	require.NoError(t, err)
	router := gin.New()
	router.POST("/otp", limit, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/otp", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
