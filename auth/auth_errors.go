package auth

import apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"

// Errors returned by Session. Match them with errors.Is.
var (
	ErrDiscoveryUnavailable = apperrors.ErrDiscoveryUnavailable
	ErrAuthorizationDenied  = apperrors.ErrAuthorizationDenied
	ErrCodeExchangeFailed   = apperrors.ErrCodeExchangeFailed
	ErrStateMismatch        = apperrors.ErrStateMismatch
	ErrHandoffExpired       = apperrors.ErrHandoffExpired
	ErrUnauthenticated      = apperrors.ErrUnauthenticated
)
