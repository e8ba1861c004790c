// Package controllertest wires services against an in-memory database for
// HTTP handler tests.
package controllertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"bharatprint/config"
	"bharatprint/model"
	"bharatprint/services"
	"bharatprint/storage"
	"bharatprint/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const JWTSecret = "controller-test-secret"

// Now is the starting clock. Sessions are checked against wall-clock time, so
// it must stay close to it.
var Now = time.Now().UTC().Truncate(time.Second)

// Sender records every message instead of delivering it.
type Sender struct {
	mu   sync.Mutex
	Sent []Message
}

type Message struct{ To, Body string }

func (s *Sender) Send(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, Message{To: to, Body: body})
	return nil
}

func (s *Sender) Name() string { return "test" }

func (s *Sender) Last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return Message{}
	}
	return s.Sent[len(s.Sent)-1]
}

type Env struct {
	DB     *gorm.DB
	Svc    *services.Services
	Blobs  *storage.MemoryStore
	Sender *Sender
	Clock  *testutil.Clock
	Router *gin.Engine
	API    *gin.RouterGroup
}

// New returns an environment whose router has an empty /api group ready for
// a controller to register on.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	plans, err := config.LoadPlans()
	require.NoError(t, err)

	cfg := &config.Config{
		PublicBaseURL: "https://bharatprint.test",
		JWT:           config.JWTConfig{Secret: JWTSecret, Expiration: 30 * 24 * time.Hour},
		OTP:           config.OTPConfig{TTL: 10 * time.Minute, MaxAttempts: 5, RateLimit: "100-M"},
	}
	clock := testutil.NewClock(Now)
	blobs := storage.NewMemoryStore()
	sender := &Sender{}
	svc := &services.Services{
		Config: cfg,
		Plans:  plans,
		Logger: zap.NewNop(),
		Blobs:  blobs,
		Sender: sender,
		Clock:  clock.Now,
	}

	router := gin.New()
	return &Env{
		DB:     testutil.NewDB(t),
		Svc:    svc,
		Blobs:  blobs,
		Sender: sender,
		Clock:  clock,
		Router: router,
		API:    router.Group("/api"),
	}
}

// Token signs a session for user that is valid at the env clock and at
// wall-clock time.
func (e *Env) Token(t *testing.T, user *model.User) string {
	t.Helper()
	claims := model.AccessClaims{
		Phone: user.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return token
}

// Do serves one request. body may be nil, an io.Reader or a value to encode
// as JSON.
func (e *Env) Do(t *testing.T, method, path, token string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case *Multipart:
		r = &b.buf
		contentType = b.contentType
	case *FormBody:
		vals := url.Values{}
		for k, v := range b.values {
			vals.Set(k, v)
		}
		r = strings.NewReader(vals.Encode())
		contentType = "application/x-www-form-urlencoded"
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the response body into a generic map.
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// Multipart builds a multipart/form-data request body.
type Multipart struct {
	buf         bytes.Buffer
	contentType string
}

func NewMultipart(t *testing.T, fields map[string]string, fileField, fileName string, data []byte) *Multipart {
	t.Helper()
	m := &Multipart{}
	w := multipart.NewWriter(&m.buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	m.contentType = w.FormDataContentType()
	return m
}

// Form builds an application/x-www-form-urlencoded body.
func Form(values map[string]string) *FormBody {
	return &FormBody{values: values}
}

type FormBody struct{ values map[string]string }
