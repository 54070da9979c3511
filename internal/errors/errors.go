package errors

import (
	"errors"
	"fmt"
)

// Common error types for the chat client
var (
	// Authentication errors
	ErrDiscoveryUnavailable = errors.New("discovery document unavailable")
	ErrAuthorizationDenied  = errors.New("authorization denied")
	ErrCodeExchangeFailed   = errors.New("authorization code exchange failed")
	ErrStateMismatch        = errors.New("state parameter mismatch")
	ErrHandoffExpired       = errors.New("login attempt expired")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrLoginInProgress      = errors.New("login already in progress")

	// Chat errors
	ErrNotOpen           = errors.New("connection is not open")
	ErrAlreadyOpen       = errors.New("connection already open")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrExchangeInFlight  = errors.New("an exchange is already in flight")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrTransportFailure  = errors.New("transport failure")
	ErrChatRequestFailed = errors.New("chat request failed")

	// Backend errors
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing bearer token")
)

// Mark tags cause with a taxonomy sentinel; errors.Is matches both.
func Mark(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
