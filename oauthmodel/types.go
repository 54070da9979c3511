package oauthmodel

// ResponseType represents the OAuth 2.0 response type requested from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code.
	// Example: /authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 is the SHA-256 challenge method.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Provider validates: SHA256(code_verifier) == stored code_challenge
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, redirect_uri, code_verifier
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// Query and form parameter names used by the client.
const (
	ParamClientID              = "client_id"
	ParamRedirectURI           = "redirect_uri"
	ParamResponseType          = "response_type"
	ParamScope                 = "scope"
	ParamState                 = "state"
	ParamCode                  = "code"
	ParamCodeChallenge         = "code_challenge"
	ParamCodeChallengeMethod   = "code_challenge_method"
	ParamCodeVerifier          = "code_verifier"
	ParamGrantType             = "grant_type"
	ParamError                 = "error"
	ParamErrorDescription      = "error_description"
	ParamPostLogoutRedirectURI = "post_logout_redirect_uri"
	ParamIDToken               = "id_token"
)
