package chat

import (
	"context"
	"errors"
)

// ErrConnClosed is returned by Conn.Read when the peer closed the connection normally.
var ErrConnClosed = errors.New("connection closed by peer")

// Conn is one bidirectional text-frame connection to the backend.
type Conn interface {
	// Read blocks for the next text frame. A normal close by the peer is reported as
	// ErrConnClosed; any other error is a transport failure.
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, frame string) error
	Close() error
}

// Dialer opens connections. token is empty when no bearer token is available.
type Dialer interface {
	Dial(ctx context.Context, token string) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, token string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, token string) (Conn, error) {
	return f(ctx, token)
}
