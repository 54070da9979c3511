package server

import apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"

var (
	ErrInvalidToken = apperrors.ErrInvalidToken
	ErrMissingToken = apperrors.ErrMissingToken
)
