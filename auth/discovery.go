package auth

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"
	"github.com/jrsteele09/go-pkce-chat/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// providerConfig is the discovery result cached for the lifetime of a Session.
type providerConfig struct {
	provider *oidc.Provider
	document oauthmodel.DiscoveryDocument
}

// Discovery returns the provider's discovery document, fetching it on first use.
func (s *Session) Discovery(ctx context.Context) (oauthmodel.DiscoveryDocument, error) {
	pc, err := s.providerConfig(ctx)
	if err != nil {
		return oauthmodel.DiscoveryDocument{}, err
	}
	return pc.document, nil
}

// RefreshDiscovery discards the cached document and fetches it again.
func (s *Session) RefreshDiscovery(ctx context.Context) (oauthmodel.DiscoveryDocument, error) {
	s.mu.Lock()
	s.discovered = nil
	s.mu.Unlock()
	return s.Discovery(ctx)
}

func (s *Session) providerConfig(ctx context.Context) (*providerConfig, error) {
	s.mu.Lock()
	cached := s.discovered
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	pc, err := s.fetchDiscovery(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.discovered == nil {
		s.discovered = pc
	}
	pc = s.discovered
	s.mu.Unlock()
	return pc, nil
}

func (s *Session) fetchDiscovery(ctx context.Context) (*providerConfig, error) {
	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, s.httpClient), s.config.Issuer)
	if err != nil {
		log.Err(err).Str("issuer", s.config.Issuer).Msg("Discovery failed")
		return nil, apperrors.Mark(ErrDiscoveryUnavailable, errors.Wrap(err, "[Session.fetchDiscovery] oidc.NewProvider"))
	}

	var doc oauthmodel.DiscoveryDocument
	if err := provider.Claims(&doc); err != nil {
		return nil, apperrors.Mark(ErrDiscoveryUnavailable, errors.Wrap(err, "[Session.fetchDiscovery] provider.Claims"))
	}
	if err := doc.Validate(); err != nil {
		return nil, apperrors.Mark(ErrDiscoveryUnavailable, err)
	}
	if !doc.SupportsS256() {
		return nil, apperrors.Mark(ErrDiscoveryUnavailable, errors.New("[Session.fetchDiscovery] provider does not support S256"))
	}

	log.Debug().
		Str("authorization_endpoint", doc.AuthorizationEndpoint).
		Str("token_endpoint", doc.TokenEndpoint).
		Str("end_session_endpoint", doc.EndSessionEndpoint).
		Msg("Discovery document loaded")

	return &providerConfig{provider: provider, document: doc}, nil
}

// oauth2Config builds the client configuration for one discovery result.
// Client authentication is always sent in the form body so the token endpoint sees
// exactly one request per code.
func (s *Session) oauth2Config(doc oauthmodel.DiscoveryDocument) *oauth2.Config {
	return &oauth2.Config{
		ClientID: s.config.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   doc.AuthorizationEndpoint,
			TokenURL:  doc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: s.config.RedirectURI,
		Scopes:      s.config.Scopes,
	}
}
