package auth

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-pkce-chat/auth/handoff"
	"github.com/jrsteele09/go-pkce-chat/pkce"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultHandoffMaxAge = 10 * time.Minute

// Config describes the public client registered with the identity provider.
type Config struct {
	// Issuer is the provider URL; discovery is read from
	// <Issuer>/.well-known/openid-configuration.
	Issuer string

	// ClientID is the public client identifier. There is no client secret.
	ClientID string

	// RedirectURI is sent on both the authorization request and the token request and
	// must be byte-for-byte identical in each.
	RedirectURI string

	// Scopes requested at login.
	Scopes []string

	// PostLogoutRedirectURI is where the provider returns the user agent after logout.
	PostLogoutRedirectURI string

	// VerifierLength is the code_verifier length, 43..128. Zero means 128.
	VerifierLength int

	// HandoffMaxAge bounds how long a stored verifier stays usable. Zero means 10 minutes.
	HandoffMaxAge time.Duration
}

// Identity holds the ID token claims of the logged in user.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Session runs the PKCE authorization code flow for one user agent and owns the
// resulting bearer token.
type Session struct {
	config     Config
	agent      UserAgent
	handoffs   handoff.Repo
	httpClient *http.Client
	nowTime    func() time.Time // nowTime function (injectable for testing)

	mu         sync.Mutex
	state      State
	token      *oauth2.Token
	identity   *Identity
	discovered *providerConfig
}

// SessionOption defines a function type to modify the Session instance.
type SessionOption func(*Session)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionOption {
	return func(s *Session) {
		s.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used for discovery, key fetches and the token exchange.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(s *Session) {
		s.httpClient = client
	}
}

// NewSession initializes an unauthenticated Session.
func NewSession(config Config, agent UserAgent, handoffs handoff.Repo, options ...SessionOption) (*Session, error) {
	if strings.TrimSpace(config.Issuer) == "" {
		return nil, errors.New("[NewSession] issuer is required")
	}
	if strings.TrimSpace(config.ClientID) == "" {
		return nil, errors.New("[NewSession] client id is required")
	}
	if strings.TrimSpace(config.RedirectURI) == "" {
		return nil, errors.New("[NewSession] redirect uri is required")
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "[NewSession]")
	}
	if agent == nil {
		return nil, errors.New("[NewSession] user agent is required")
	}
	if handoffs == nil {
		return nil, errors.New("[NewSession] handoff repo is required")
	}
	if config.VerifierLength == 0 {
		config.VerifierLength = pkce.DefaultVerifierLength
	}
	if config.VerifierLength < pkce.MinVerifierLength || config.VerifierLength > pkce.MaxVerifierLength {
		return nil, errors.Wrap(pkce.ErrInvalidVerifierLength, "[NewSession]")
	}
	if config.HandoffMaxAge <= 0 {
		config.HandoffMaxAge = defaultHandoffMaxAge
	}

	s := &Session{
		config:     config,
		agent:      agent,
		handoffs:   handoffs,
		httpClient: http.DefaultClient,
		nowTime:    time.Now,
		state:      StateUnauthenticated,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// State returns the current position in the login flow.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the bearer token. ok is false unless the session is authenticated.
func (s *Session) AccessToken() (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.token == nil {
		return "", false
	}
	return s.token.AccessToken, true
}

// Identity returns the verified ID token claims, if the provider sent an ID token.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// resetLocked drops every credential. Callers hold s.mu.
func (s *Session) resetLocked() {
	s.state = StateUnauthenticated
	s.token = nil
	s.identity = nil
}
