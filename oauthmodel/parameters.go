package oauthmodel

import (
	"net/url"
	"strings"
)

// CallbackParameters holds the parameters the identity provider appends to the redirect_uri
// when it sends the user agent back to the client.
type CallbackParameters struct {
	// Code is the authorization code to exchange at the token endpoint.
	// Present: When the user approved the request
	// Example: "SplxlOBeZQQYbYS6WxSbIA"
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// State echoes the value sent in the authorization request.
	// Security: Must match the value stored before the redirect (CSRF protection)
	State string

	// Error is the OAuth2 error code returned instead of a code.
	// Example: "access_denied"
	Error string

	// ErrorDescription is a human-readable explanation of Error.
	// Example: "The user denied the request"
	ErrorDescription string
}

// ParseCallback extracts the callback parameters from a location.
func ParseCallback(location *url.URL) CallbackParameters {
	if location == nil {
		return CallbackParameters{}
	}
	q := location.Query()
	return CallbackParameters{
		Code:             strings.TrimSpace(q.Get(ParamCode)),
		State:            q.Get(ParamState),
		Error:            q.Get(ParamError),
		ErrorDescription: q.Get(ParamErrorDescription),
	}
}

// IsCallback reports whether the location carried any authorization response at all.
func (p CallbackParameters) IsCallback() bool {
	return p.Code != "" || p.Error != ""
}

// Denied reports whether the provider returned an error instead of a code.
func (p CallbackParameters) Denied() bool {
	return p.Error != ""
}

// StripCallback returns a copy of location without its query string or fragment.
func StripCallback(location *url.URL) *url.URL {
	if location == nil {
		return nil
	}
	stripped := *location
	stripped.RawQuery = ""
	stripped.ForceQuery = false
	stripped.Fragment = ""
	stripped.RawFragment = ""
	return &stripped
}

// EndSessionRequest holds the parameters sent to the provider's end_session_endpoint.
type EndSessionRequest struct {
	// ClientID identifies the client ending the session.
	ClientID string

	// PostLogoutRedirectURI is where the provider sends the user agent after logout.
	// Example: "http://127.0.0.1:8765/"
	PostLogoutRedirectURI string
}

// URL builds the logout redirect for the given end_session_endpoint.
func (r EndSessionRequest) URL(endSessionEndpoint string) (*url.URL, error) {
	if strings.TrimSpace(endSessionEndpoint) == "" {
		return nil, ErrMissingEndSessionEndpoint
	}
	u, err := url.Parse(endSessionEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	q := u.Query()
	q.Set(ParamClientID, r.ClientID)
	if r.PostLogoutRedirectURI != "" {
		q.Set(ParamPostLogoutRedirectURI, r.PostLogoutRedirectURI)
	}
	u.RawQuery = q.Encode()
	return u, nil
}
