package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-pkce-chat/auth/handoff"
	apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"
	"github.com/jrsteele09/go-pkce-chat/oauthmodel"
	"github.com/jrsteele09/go-pkce-chat/pkce"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const stateLength = 32

// Login starts a new authorization attempt and sends the user agent to the provider.
// Any token held by the session is dropped.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateExchangingCode {
		s.mu.Unlock()
		return apperrors.ErrLoginInProgress
	}
	s.resetLocked()
	s.mu.Unlock()

	pc, err := s.providerConfig(ctx)
	if err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login]")
	}

	verifier, err := pkce.GenerateVerifier(s.config.VerifierLength)
	if err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login] pkce.GenerateVerifier")
	}
	state, err := randomState()
	if err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login] randomState")
	}

	if err := s.handoffs.Put(ctx, handoff.Handoff{
		CodeVerifier: verifier,
		State:        state,
		CreatedAt:    s.nowTime(),
	}); err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login] handoffs.Put")
	}

	// The challenge is derived here and never stored
	authURL := s.oauth2Config(pc.document).AuthCodeURL(state,
		oauth2.SetAuthURLParam(oauthmodel.ParamCodeChallenge, pkce.Challenge(verifier)),
		oauth2.SetAuthURLParam(oauthmodel.ParamCodeChallengeMethod, string(oauthmodel.CodeMethodTypeS256)),
	)
	target, err := url.Parse(authURL)
	if err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login] url.Parse")
	}

	s.setState(StateAwaitingRedirect)
	if err := s.agent.Navigate(ctx, target); err != nil {
		s.abandon(ctx)
		return errors.Wrap(err, "[Session.Login] agent.Navigate")
	}
	return nil
}

// CompleteLogin finishes an attempt started by Login. It is safe to call on every page
// load: without an authorization response in the location, or with a code but no stored
// verifier, it does nothing and performs no network call. An error response from the
// provider always ends in ErrAuthorizationDenied.
//
// The stored verifier is consumed before the exchange, so a code can be exchanged at most
// once whatever the outcome.
func (s *Session) CompleteLogin(ctx context.Context) error {
	location := s.agent.Location()
	params := oauthmodel.ParseCallback(location)
	if !params.IsCallback() {
		return nil
	}

	// Keep the code out of the visible address, history and bookmarks
	s.agent.ReplaceLocation(oauthmodel.StripCallback(location))

	stored, ok, err := s.handoffs.Take(ctx)
	if err != nil {
		s.fail()
		return errors.Wrap(err, "[Session.CompleteLogin] handoffs.Take")
	}
	if params.Denied() {
		s.fail()
		return apperrors.Mark(ErrAuthorizationDenied, fmt.Errorf("%s: %s", params.Error, params.ErrorDescription))
	}
	if !ok {
		log.Debug().Msg("Callback without a stored verifier, ignoring")
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored.State), []byte(params.State)) != 1 {
		s.fail()
		return ErrStateMismatch
	}
	if s.nowTime().Sub(stored.CreatedAt) > s.config.HandoffMaxAge {
		s.fail()
		return ErrHandoffExpired
	}

	s.setState(StateExchangingCode)

	pc, err := s.providerConfig(ctx)
	if err != nil {
		s.fail()
		return errors.Wrap(err, "[Session.CompleteLogin]")
	}

	token, err := s.oauth2Config(pc.document).Exchange(
		context.WithValue(ctx, oauth2.HTTPClient, s.httpClient),
		params.Code,
		oauth2.VerifierOption(stored.CodeVerifier),
	)
	if err != nil {
		s.fail()
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Err(err).Str("error_code", retrieveErr.ErrorCode).Msg("Token endpoint rejected the code")
		} else {
			log.Err(err).Msg("Token exchange failed")
		}
		return apperrors.Mark(ErrCodeExchangeFailed, errors.Wrap(err, "[Session.CompleteLogin] Exchange"))
	}

	identity, err := s.verifyIDToken(ctx, pc, token)
	if err != nil {
		s.fail()
		return apperrors.Mark(ErrCodeExchangeFailed, err)
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.state = StateAuthenticated
	s.mu.Unlock()

	log.Info().Msg("Login complete")
	return nil
}

// Logout drops the local token and sends the user agent to the provider's end-session
// endpoint. The local logout happens even when discovery fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	if err := s.handoffs.Clear(ctx); err != nil {
		log.Err(err).Msg("Logout: failed to clear stored verifier")
	}

	pc, err := s.providerConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "[Session.Logout]")
	}
	if pc.document.EndSessionEndpoint == "" {
		log.Warn().Msg("Logout: provider has no end_session_endpoint, local logout only")
		return nil
	}

	target, err := oauthmodel.EndSessionRequest{
		ClientID:              s.config.ClientID,
		PostLogoutRedirectURI: s.config.PostLogoutRedirectURI,
	}.URL(pc.document.EndSessionEndpoint)
	if err != nil {
		return errors.Wrap(err, "[Session.Logout] EndSessionRequest.URL")
	}
	if err := s.agent.Navigate(ctx, target); err != nil {
		return errors.Wrap(err, "[Session.Logout] agent.Navigate")
	}
	return nil
}

func (s *Session) verifyIDToken(ctx context.Context, pc *providerConfig, token *oauth2.Token) (*Identity, error) {
	rawIDToken, ok := token.Extra(oauthmodel.ParamIDToken).(string)
	if !ok || rawIDToken == "" {
		return nil, nil
	}

	idToken, err := pc.provider.Verifier(&oidc.Config{
		ClientID: s.config.ClientID,
		Now:      s.nowTime,
	}).Verify(oidc.ClientContext(ctx, s.httpClient), rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Session.verifyIDToken] Verify")
	}

	var identity Identity
	if err := idToken.Claims(&identity); err != nil {
		return nil, errors.Wrap(err, "[Session.verifyIDToken] Claims")
	}
	return &identity, nil
}

// abandon ends a login attempt that never reached the provider.
func (s *Session) abandon(ctx context.Context) {
	if err := s.handoffs.Clear(ctx); err != nil {
		log.Err(err).Msg("Failed to clear stored verifier")
	}
	s.fail()
}

func (s *Session) fail() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// randomState creates a random base64url string
func randomState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
