package oauthmodel

import "errors"

var (
	ErrMissingAuthorizationEndpoint = errors.New("discovery document has no authorization_endpoint")
	ErrMissingTokenEndpoint         = errors.New("discovery document has no token_endpoint")
	ErrMissingEndSessionEndpoint    = errors.New("discovery document has no end_session_endpoint")
	ErrInvalidEndpoint              = errors.New("invalid endpoint url")
)
