package server_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-pkce-chat/internal/config"
	"github.com/jrsteele09/go-pkce-chat/server"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-0123456789"
	testAudience = "chat-api"
	testSubject  = "user-1"
	testOrigin   = "http://localhost:3000"
	waitTimeout  = 2 * time.Second
	pollInterval = 5 * time.Millisecond
)

// staticTokens is a chat.TokenSource with a fixed token.
type staticTokens struct {
	mu    sync.Mutex
	token string
}

func (s *staticTokens) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// panicResponder fails every reply by panicking.
type panicResponder struct{}

func (panicResponder) Reply(context.Context, string, string) ([]string, error) {
	panic("responder exploded")
}

// testFixture holds all test dependencies
type testFixture struct {
	server *server.Server
	http   *httptest.Server
}

// setupTestFixture starts the backend with an HS256 verifier and the echo responder
func setupTestFixture(t *testing.T, responder server.Responder) *testFixture {
	t.Helper()
	t.Setenv("CHAT_CHUNK_SIZE", "4")
	t.Setenv("ALLOWED_ORIGINS", testOrigin)

	cfg := config.New()
	verifier, err := server.NewHMACVerifier(testSecret, testAudience)
	require.NoError(t, err)
	if responder == nil {
		responder = server.EchoResponder{ChunkSize: cfg.GetChunkSize()}
	}

	srv, err := server.New(cfg, verifier, responder)
	require.NoError(t, err)

	f := &testFixture{server: srv, http: httptest.NewServer(srv)}
	t.Cleanup(f.http.Close)
	return f
}

func (f *testFixture) url(path string) string {
	return f.http.URL + path
}

func (f *testFixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.http.URL, "http") + path
}

// signToken creates an HS256 token for testSubject.
func signToken(t *testing.T, secret, audience string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   testSubject,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(expiresIn).Unix(),
		"scope": "openid chat",
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validToken(t *testing.T) string {
	return signToken(t, testSecret, testAudience, time.Hour)
}
