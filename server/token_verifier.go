package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"
	"github.com/pkg/errors"
)

// Claims are the facts about the caller taken from a verified bearer token.
type Claims struct {
	Subject   string
	Scopes    []string
	ExpiresAt time.Time
}

// TokenVerifier checks a raw bearer token. Failures match ErrInvalidToken.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// HMACVerifier accepts HS256 JWTs signed with a shared secret.
type HMACVerifier struct {
	secret   []byte
	audience string
	nowTime  func() time.Time
}

// HMACOption defines a function type to modify the HMACVerifier instance.
type HMACOption func(*HMACVerifier)

// WithHMACNowTime sets the clock used for exp and nbf checks (primarily for testing)
func WithHMACNowTime(nowFunc func() time.Time) HMACOption {
	return func(v *HMACVerifier) {
		v.nowTime = nowFunc
	}
}

// NewHMACVerifier creates a verifier for secret. An empty audience skips the aud check.
func NewHMACVerifier(secret, audience string, options ...HMACOption) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("[NewHMACVerifier] secret is required")
	}
	v := &HMACVerifier{
		secret:   []byte(secret),
		audience: audience,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v, nil
}

func (v *HMACVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.nowTime),
	}
	if v.audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOptions...)
	if err != nil {
		return nil, apperrors.Mark(ErrInvalidToken, errors.Wrap(err, "[HMACVerifier.Verify]"))
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, apperrors.Mark(ErrInvalidToken, errors.New("[HMACVerifier.Verify] token has no subject"))
	}
	result := &Claims{Subject: subject}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	if scope, ok := claims["scope"].(string); ok {
		result.Scopes = strings.Fields(scope)
	}
	return result, nil
}

// OIDCVerifier accepts JWT access tokens signed by an OpenID provider, checked against
// the provider's published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	client   *http.Client
}

// NewOIDCVerifier runs discovery against issuer. An empty audience skips the aud check.
func NewOIDCVerifier(ctx context.Context, issuer, audience string, client *http.Client) (*OIDCVerifier, error) {
	if client == nil {
		client = http.DefaultClient
	}
	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCVerifier] oidc.NewProvider")
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{
			ClientID:          audience,
			SkipClientIDCheck: audience == "",
		}),
		client: client,
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.verifier.Verify(oidc.ClientContext(ctx, v.client), rawToken)
	if err != nil {
		return nil, apperrors.Mark(ErrInvalidToken, errors.Wrap(err, "[OIDCVerifier.Verify]"))
	}

	var extra struct {
		Scope string `json:"scope"`
	}
	if err := token.Claims(&extra); err != nil {
		return nil, apperrors.Mark(ErrInvalidToken, errors.Wrap(err, "[OIDCVerifier.Verify] Claims"))
	}
	return &Claims{
		Subject:   token.Subject,
		Scopes:    strings.Fields(extra.Scope),
		ExpiresAt: token.Expiry,
	}, nil
}
