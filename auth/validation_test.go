package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-pkce-chat/auth"
	"github.com/jrsteele09/go-pkce-chat/auth/handoff"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	require.NoError(t, auth.ValidateIssuer("https://auth.example.com"))
	require.NoError(t, auth.ValidateIssuer("http://127.0.0.1:9000/realms/chat"))

	for _, issuer := range []string{"", "auth.example.com", "ftp://auth.example.com", "https://auth.example.com?x=1"} {
		require.Error(t, auth.ValidateIssuer(issuer), issuer)
	}
}

func TestValidateRedirectURI(t *testing.T) {
	t.Run("Valid HTTPS URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("https://example.com/callback"))
	})

	t.Run("Valid loopback URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("http://127.0.0.1:8765/callback"))
	})

	t.Run("Empty URI", func(t *testing.T) {
		err := auth.ValidateRedirectURI("")
		require.ErrorContains(t, err, "required")
	})

	t.Run("Invalid scheme", func(t *testing.T) {
		err := auth.ValidateRedirectURI("ftp://example.com/callback")
		require.ErrorContains(t, err, "http or https")
	})

	t.Run("Relative URI", func(t *testing.T) {
		err := auth.ValidateRedirectURI("http:///callback")
		require.ErrorContains(t, err, "absolute")
	})

	t.Run("URI with fragment", func(t *testing.T) {
		err := auth.ValidateRedirectURI("https://example.com/callback#fragment")
		require.ErrorContains(t, err, "fragments")
	})
}

func TestValidateScopes(t *testing.T) {
	require.NoError(t, auth.ValidateScopes(nil))
	require.NoError(t, auth.ValidateScopes([]string{"openid", "profile", "email"}))
	require.Error(t, auth.ValidateScopes([]string{"openid profile"}))
	require.Error(t, auth.ValidateScopes([]string{"openid", ""}))
	require.Error(t, auth.ValidateScopes([]string{"openid\nprofile"}))
}

func TestNewSession_RejectsInvalidConfig(t *testing.T) {
	_, err := auth.NewSession(auth.Config{
		Issuer:      "https://auth.example.com",
		ClientID:    testClientID,
		RedirectURI: "https://example.com/callback#frag",
	}, &fakeAgent{}, handoff.NewInMemoryRepo())
	require.ErrorContains(t, err, "fragments")

	_, err = auth.NewSession(auth.Config{
		Issuer:      "https://auth.example.com",
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		Scopes:      []string{"openid profile"},
	}, &fakeAgent{}, handoff.NewInMemoryRepo())
	require.ErrorContains(t, err, "whitespace")
}
