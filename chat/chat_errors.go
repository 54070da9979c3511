package chat

import apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"

// Errors returned by Session, Reassembler and RequestClient. Match them with errors.Is.
var (
	ErrNotOpen           = apperrors.ErrNotOpen
	ErrAlreadyOpen       = apperrors.ErrAlreadyOpen
	ErrEmptyMessage      = apperrors.ErrEmptyMessage
	ErrUnauthenticated   = apperrors.ErrUnauthenticated
	ErrExchangeInFlight  = apperrors.ErrExchangeInFlight
	ErrProtocolViolation = apperrors.ErrProtocolViolation
	ErrTransportFailure  = apperrors.ErrTransportFailure
	ErrChatRequestFailed = apperrors.ErrChatRequestFailed
)
