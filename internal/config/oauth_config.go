package config

import (
	"strings"
	"time"
)

const (
	issuerVar                = "OAUTH_ISSUER"
	clientIDVar              = "OAUTH_CLIENT_ID"
	redirectURIVar           = "OAUTH_REDIRECT_URI"
	scopesVar                = "OAUTH_SCOPES"
	postLogoutRedirectURIVar = "OAUTH_POST_LOGOUT_REDIRECT_URI"
	verifierLengthVar        = "PKCE_VERIFIER_LENGTH"
	handoffMaxAgeVar         = "PKCE_HANDOFF_MAX_AGE"

	defaultRedirectURI   = "http://127.0.0.1:8765/callback"
	defaultPostLogoutURI = "http://127.0.0.1:8765/"
	defaultScopes        = "openid profile email"
)

type OAuthConfig interface {
	GetIssuer() string
	GetClientID() string
	GetRedirectURI() string
	GetScopes() []string
	GetPostLogoutRedirectURI() string
	GetVerifierLength() int
	GetHandoffMaxAge() time.Duration
}

type OAuthFile struct {
	Issuer                string   `yaml:"issuer"`
	ClientID              string   `yaml:"client_id"`
	RedirectURI           string   `yaml:"redirect_uri"`
	Scopes                []string `yaml:"scopes"`
	PostLogoutRedirectURI string   `yaml:"post_logout_redirect_uri"`
	VerifierLength        int      `yaml:"verifier_length"`
	HandoffMaxAge         string   `yaml:"handoff_max_age"`
}

type OAuth struct {
	file *OAuthFile
}

var _ OAuthConfig = OAuth{}

// GetIssuer returns the issuer exactly as configured. Discovery requires it to match the
// provider's advertised issuer, trailing slash included.
func (o OAuth) GetIssuer() string {
	return strings.TrimSpace(GetEnv(issuerVar, o.file.Issuer))
}

func (o OAuth) GetClientID() string {
	return GetEnv(clientIDVar, o.file.ClientID)
}

func (o OAuth) GetRedirectURI() string {
	return GetEnv(redirectURIVar, firstNonEmpty(o.file.RedirectURI, defaultRedirectURI))
}

// GetScopes reads a space separated OAUTH_SCOPES.
func (o OAuth) GetScopes() []string {
	if env := GetEnv(scopesVar, ""); env != "" {
		return strings.Fields(env)
	}
	if len(o.file.Scopes) > 0 {
		return o.file.Scopes
	}
	return strings.Fields(defaultScopes)
}

func (o OAuth) GetPostLogoutRedirectURI() string {
	return GetEnv(postLogoutRedirectURIVar, firstNonEmpty(o.file.PostLogoutRedirectURI, defaultPostLogoutURI))
}

// GetVerifierLength returns 0 when unset; the session then uses its default.
func (o OAuth) GetVerifierLength() int {
	return GetEnvInt(verifierLengthVar, o.file.VerifierLength)
}

func (o OAuth) GetHandoffMaxAge() time.Duration {
	fallback := 10 * time.Minute
	if o.file.HandoffMaxAge != "" {
		if d, err := time.ParseDuration(o.file.HandoffMaxAge); err == nil {
			fallback = d
		}
	}
	return GetEnvDuration(handoffMaxAgeVar, fallback)
}
