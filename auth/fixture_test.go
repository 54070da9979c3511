package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-pkce-chat/auth"
	"github.com/jrsteele09/go-pkce-chat/auth/handoff"
	"github.com/jrsteele09/go-pkce-chat/oauthmodel"
	"github.com/stretchr/testify/require"
)

const (
	testClientID        = "chat-client"
	testRedirectURI     = "http://127.0.0.1:8765/callback"
	testPostLogoutURI   = "http://127.0.0.1:8765/"
	testAccessToken     = "access-token-123"
	testAuthCode        = "SplxlOBeZQQYbYS6WxSbIA"
	testKeyID           = "test-key"
	testSubject         = "user-1"
	testEmail           = "john.doe@example.com"
	testName            = "John Doe"
	routeDiscovery      = "/.well-known/openid-configuration"
	routeAuthorize      = "/oauth2/authorize"
	routeToken          = "/oauth2/token"
	routeJWKS           = "/.well-known/jwks.json"
	routeEndSession     = "/oauth2/logout"
	testHandoffLifetime = 10 * time.Minute
)

// fakeProvider is a minimal identity provider: discovery, token endpoint and keys.
type fakeProvider struct {
	t      *testing.T
	server *httptest.Server
	key    *rsa.PrivateKey

	mu                sync.Mutex
	issuer            string
	now               time.Time
	discoveryStatus   int
	tokenStatus       int
	omitEndSession    bool
	omitAccessToken   bool
	issueIDToken      bool
	idTokenAudience   string
	discoveryRequests int
	tokenRequests     []url.Values
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeProvider{
		t:               t,
		key:             key,
		now:             time.Now(),
		discoveryStatus: http.StatusOK,
		tokenStatus:     http.StatusOK,
		issueIDToken:    true,
		idTokenAudience: testClientID,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routeDiscovery, p.discovery)
	mux.HandleFunc("POST "+routeToken, p.token)
	mux.HandleFunc("GET "+routeJWKS, p.jwks)
	p.server = httptest.NewServer(mux)
	p.issuer = p.server.URL
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) url(path string) string {
	return p.server.URL + path
}

func (p *fakeProvider) issuerURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issuer
}

func (p *fakeProvider) clock() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *fakeProvider) advance(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = p.now.Add(d)
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakeProvider) tokenRequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokenRequests)
}

func (p *fakeProvider) lastTokenRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(p.t, p.tokenRequests)
	return p.tokenRequests[len(p.tokenRequests)-1]
}

func (p *fakeProvider) discoveryRequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discoveryRequests
}

func (p *fakeProvider) discovery(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	p.discoveryRequests++
	status := p.discoveryStatus
	omitEndSession := p.omitEndSession
	issuer := p.issuer
	p.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "unavailable", status)
		return
	}

	doc := map[string]any{
		"issuer":                                issuer,
		"authorization_endpoint":                p.url(routeAuthorize),
		"token_endpoint":                        p.url(routeToken),
		"jwks_uri":                              p.url(routeJWKS),
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"code_challenge_methods_supported":      []string{"S256", "plain"},
	}
	if !omitEndSession {
		doc["end_session_endpoint"] = p.url(routeEndSession)
	}
	writeJSON(w, http.StatusOK, doc)
}

func (p *fakeProvider) token(w http.ResponseWriter, r *http.Request) {
	require.NoError(p.t, r.ParseForm())

	p.mu.Lock()
	p.tokenRequests = append(p.tokenRequests, r.PostForm)
	status := p.tokenStatus
	omitAccessToken := p.omitAccessToken
	issueIDToken := p.issueIDToken
	audience := p.idTokenAudience
	issuer := p.issuer
	now := p.now
	p.mu.Unlock()

	if r.PostForm.Get(oauthmodel.ParamGrantType) != string(oauthmodel.AuthorizationCodeGrant) {
		writeJSON(w, http.StatusBadRequest, map[string]string{oauthmodel.ParamError: "unsupported_grant_type"})
		return
	}
	if status != http.StatusOK {
		writeJSON(w, status, map[string]string{
			oauthmodel.ParamError:            "invalid_grant",
			oauthmodel.ParamErrorDescription: "code already used",
		})
		return
	}

	resp := map[string]any{
		"token_type": "Bearer",
		"expires_in": 3600,
	}
	if !omitAccessToken {
		resp["access_token"] = testAccessToken
	}
	if issueIDToken {
		resp[oauthmodel.ParamIDToken] = p.signIDToken(issuer, audience, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (p *fakeProvider) jwks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(p.key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(p.key.E)).Bytes()),
		}},
	})
}

func (p *fakeProvider) signIDToken(issuer, audience string, now time.Time) string {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss":   issuer,
		"sub":   testSubject,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": testEmail,
		"name":  testName,
	})
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(p.key)
	require.NoError(p.t, err)
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeAgent records navigations and plays the part of the browser's address bar.
type fakeAgent struct {
	mu          sync.Mutex
	location    *url.URL
	navigations []*url.URL
	replaced    []*url.URL
	navigateErr error
}

func (a *fakeAgent) Navigate(_ context.Context, target *url.URL) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.navigateErr != nil {
		return a.navigateErr
	}
	a.navigations = append(a.navigations, target)
	return nil
}

func (a *fakeAgent) Location() *url.URL {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *fakeAgent) ReplaceLocation(u *url.URL) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replaced = append(a.replaced, u)
	a.location = u
}

func (a *fakeAgent) land(t *testing.T, raw string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = u
}

func (a *fakeAgent) lastNavigation(t *testing.T) *url.URL {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.navigations)
	return a.navigations[len(a.navigations)-1]
}

func (a *fakeAgent) navigationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.navigations)
}

// testFixture holds all test dependencies
type testFixture struct {
	provider *fakeProvider
	agent    *fakeAgent
	handoffs *handoff.InMemoryRepo
	session  *auth.Session
}

// setupTestFixture creates a provider, a user agent, a handoff slot and a session
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		provider: newFakeProvider(t),
		agent:    &fakeAgent{},
		handoffs: handoff.NewInMemoryRepo(),
	}
	f.session = f.newSession(t)
	return f
}

// newSession creates another session over the same store, as a reloaded page would.
func (f *testFixture) newSession(t *testing.T) *auth.Session {
	t.Helper()
	return f.newSessionFor(t, f.provider.issuerURL())
}

// newSessionFor creates a session configured with the given issuer.
func (f *testFixture) newSessionFor(t *testing.T, issuer string) *auth.Session {
	t.Helper()

	s, err := auth.NewSession(auth.Config{
		Issuer:                issuer,
		ClientID:              testClientID,
		RedirectURI:           testRedirectURI,
		Scopes:                []string{"openid", "profile", "email"},
		PostLogoutRedirectURI: testPostLogoutURI,
		HandoffMaxAge:         testHandoffLifetime,
	}, f.agent, f.handoffs,
		auth.WithNowTime(f.provider.clock),
		auth.WithHTTPClient(f.provider.server.Client()),
	)
	require.NoError(t, err)
	return s
}

// login runs Login and returns the authorization URL the user agent was sent to.
func (f *testFixture) login(t *testing.T) *url.URL {
	t.Helper()
	require.NoError(t, f.session.Login(context.Background()))
	return f.agent.lastNavigation(t)
}

// approve lands the user agent on the redirect URI as the provider would after consent.
func (f *testFixture) approve(t *testing.T, authURL *url.URL) {
	t.Helper()
	q := url.Values{}
	q.Set(oauthmodel.ParamCode, testAuthCode)
	q.Set(oauthmodel.ParamState, authURL.Query().Get(oauthmodel.ParamState))
	f.agent.land(t, testRedirectURI+"?"+q.Encode())
}
