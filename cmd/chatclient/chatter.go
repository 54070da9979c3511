package main

import (
	"context"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/jrsteele09/go-pkce-chat/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errInterrupted = errors.New("reply interrupted")

// chatter sends one message and returns the complete reply.
type chatter interface {
	Ask(ctx context.Context, text string) (string, error)
	Close() error
}

func newChatter(c config.Config, tokens chat.TokenSource) (chatter, error) {
	if c.GetMode() == config.ModeRequest {
		client, err := chat.NewRequestClient(c.GetChatURL(), tokens)
		if err != nil {
			return nil, err
		}
		return requestChatter{client: client}, nil
	}
	return newStreamChatter(chat.WebsocketDialer{URL: c.GetStreamURL()}, tokens, c.GetTerminator())
}

type requestChatter struct {
	client *chat.RequestClient
}

func (r requestChatter) Ask(ctx context.Context, text string) (string, error) {
	turn, err := r.client.Ask(ctx, text)
	if err != nil {
		return "", err
	}
	return turn.BotText, nil
}

func (requestChatter) Close() error {
	return nil
}

// streamChatter drives a streaming session synchronously, one exchange at a time.
type streamChatter struct {
	session *chat.Session
	outcome chan chat.Notification
}

func newStreamChatter(dialer chat.Dialer, tokens chat.TokenSource, terminator string) (*streamChatter, error) {
	sc := &streamChatter{outcome: make(chan chat.Notification, 4)}
	session, err := chat.NewSession(dialer, tokens,
		chat.WithTerminator(terminator),
		chat.WithObserver(sc.observe),
	)
	if err != nil {
		return nil, err
	}
	sc.session = session
	return sc, nil
}

func (s *streamChatter) observe(n chat.Notification) {
	switch n.Kind {
	case chat.ExchangeComplete, chat.ExchangeInterrupted, chat.TransportFailure:
		select {
		case s.outcome <- n:
		default:
		}
	case chat.ProtocolViolation:
		log.Warn().Str("chunk", n.Chunk).Msg("Server sent a chunk outside an exchange")
	case chat.StateChanged:
		log.Debug().Stringer("state", n.State).Msg("Chat connection state")
	}
}

// Ask reconnects when the connection is closed; that is this client's reconnect policy.
func (s *streamChatter) Ask(ctx context.Context, text string) (string, error) {
	if s.session.State() == chat.StateClosed {
		if err := s.session.Open(ctx); err != nil {
			return "", err
		}
	}

	s.drain()
	if err := s.session.Send(ctx, text); err != nil {
		return "", err
	}

	for {
		select {
		case n := <-s.outcome:
			switch n.Kind {
			case chat.ExchangeComplete:
				return n.Turn.BotText, nil
			case chat.ExchangeInterrupted:
				return n.Turn.BotText, errInterrupted
			case chat.TransportFailure:
				// The interruption notice follows; wait for it to report the partial reply
				continue
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (s *streamChatter) Close() error {
	return s.session.Close()
}

func (s *streamChatter) drain() {
	for {
		select {
		case <-s.outcome:
		default:
			return
		}
	}
}
