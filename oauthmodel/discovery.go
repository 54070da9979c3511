package oauthmodel

import "strings"

// DiscoveryDocument is the subset of the provider's
// /.well-known/openid-configuration the client relies on.
type DiscoveryDocument struct {
	// Issuer is the provider's issuer identifier.
	// Example: "https://auth.example.com"
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is where the user agent is sent to log in.
	// Example: "https://auth.example.com/oauth2/authorize"
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint receives the authorization code exchange.
	// Example: "https://auth.example.com/oauth2/token"
	TokenEndpoint string `json:"token_endpoint"`

	// EndSessionEndpoint is where the user agent is sent to log out.
	// Optional: Providers without RP-initiated logout omit it
	EndSessionEndpoint string `json:"end_session_endpoint"`

	// JWKSURI publishes the keys that sign ID tokens.
	JWKSURI string `json:"jwks_uri"`

	// CodeChallengeMethodsSupported lists the PKCE methods the provider accepts.
	// Example: ["S256", "plain"]
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
}

// Validate checks the endpoints required for a login are present.
func (d DiscoveryDocument) Validate() error {
	if strings.TrimSpace(d.AuthorizationEndpoint) == "" {
		return ErrMissingAuthorizationEndpoint
	}
	if strings.TrimSpace(d.TokenEndpoint) == "" {
		return ErrMissingTokenEndpoint
	}
	return nil
}

// SupportsS256 reports whether the provider advertises S256. An empty list is taken as
// support since many providers omit the field.
func (d DiscoveryDocument) SupportsS256() bool {
	if len(d.CodeChallengeMethodsSupported) == 0 {
		return true
	}
	for _, m := range d.CodeChallengeMethodsSupported {
		if m == string(CodeMethodTypeS256) {
			return true
		}
	}
	return false
}
