package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified token claims
	ContextKeyClaims ContextKey = "claims"

	// accessTokenParam carries the token on websocket handshakes from browsers, which
	// cannot set an Authorization header there.
	accessTokenParam = "access_token"
)

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*Claims)
	return claims, ok && claims != nil
}

// RequireAuth is middleware that validates a Bearer access token.
// With allowQueryToken the token may instead arrive in the access_token query parameter.
func (s *Server) RequireAuth(allowQueryToken bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok && allowQueryToken {
				token = r.URL.Query().Get(accessTokenParam)
			}
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="chat"`)
				writeJSONError(w, "unauthorized", ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := s.verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				w.Header().Set("WWW-Authenticate", `Bearer realm="chat", error="invalid_token"`)
				writeJSONError(w, "invalid_token", ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
