package chat

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"nhooyr.io/websocket"
)

// WebsocketDialer connects to the streaming endpoint of the backend.
type WebsocketDialer struct {
	// URL of the websocket endpoint, e.g. "ws://localhost:8000/ws".
	URL string

	// HTTPClient is used for the handshake. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// ReadLimit caps the size of one inbound frame. Zero keeps the library default.
	ReadLimit int64
}

// Dial performs the websocket handshake, presenting token as a bearer credential.
func (d WebsocketDialer) Dial(ctx context.Context, token string) (Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	c, resp, err := websocket.Dial(ctx, d.URL, &websocket.DialOptions{
		HTTPClient: d.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "[WebsocketDialer.Dial] handshake status %d", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "[WebsocketDialer.Dial]")
	}
	if d.ReadLimit > 0 {
		c.SetReadLimit(d.ReadLimit)
	}
	return &websocketConn{conn: c}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) Read(ctx context.Context) (string, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
			return "", ErrConnClosed
		}
		return "", err
	}
	return string(data), nil
}

func (c *websocketConn) Write(ctx context.Context, frame string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(frame))
}

func (c *websocketConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
