package chat

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const eventBuffer = 16

type eventKind int

const (
	eventFrame eventKind = iota
	eventClosed
)

// event is one inbound occurrence on a connection.
type event struct {
	kind eventKind
	data string
	err  error
}

// Session keeps one streaming connection to the backend and reassembles replies.
//
// Each connection gets a generation number. Its inbound frames travel over a single
// channel to one dispatcher, and events whose generation is no longer current are
// dropped, so nothing from an old connection or after Close reaches the transcript.
type Session struct {
	dialer    Dialer
	tokens    TokenSource
	observers []Observer

	mu          sync.Mutex
	state       ConnectionState
	conn        Conn
	generation  uint64
	stopReader  context.CancelFunc
	reassembler *Reassembler
}

// SessionOption defines a function type to modify the Session instance.
type SessionOption func(*Session)

// WithObserver registers an observer for session notifications.
func WithObserver(observer Observer) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, observer)
	}
}

// WithTerminator overrides the end-of-reply marker.
func WithTerminator(terminator string) SessionOption {
	return func(s *Session) {
		s.reassembler = NewReassembler(terminator)
	}
}

// NewSession creates a closed Session.
func NewSession(dialer Dialer, tokens TokenSource, options ...SessionOption) (*Session, error) {
	if dialer == nil {
		return nil, errors.New("[NewSession] dialer is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewSession] token source is required")
	}

	s := &Session{
		dialer:      dialer,
		tokens:      tokens,
		state:       StateClosed,
		reassembler: NewReassembler(DefaultTerminator),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Open connects to the backend. It returns ErrAlreadyOpen without dialing when a
// connection exists or is being established.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateClosed {
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.generation++
	gen := s.generation
	notes := s.setStateLocked(StateConnecting)
	s.mu.Unlock()
	s.notify(notes)

	token, _ := s.tokens.AccessToken()
	conn, err := s.dialer.Dial(ctx, token)

	s.mu.Lock()
	if gen != s.generation {
		// Closed while dialing
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrNotOpen
	}
	if err != nil {
		notes = s.setStateLocked(StateClosed)
		s.mu.Unlock()
		s.notify(notes)
		log.Err(err).Msg("Chat connection failed")
		return apperrors.Mark(ErrTransportFailure, errors.Wrap(err, "[Session.Open] Dial"))
	}

	readerCtx, stop := context.WithCancel(context.Background())
	s.conn = conn
	s.stopReader = stop
	notes = s.setStateLocked(StateOpen)
	s.mu.Unlock()

	// Observers see the connection open before anything it delivers
	s.notify(notes)

	events := make(chan event, eventBuffer)
	go s.read(readerCtx, conn, events)
	go s.dispatch(gen, events)

	log.Debug().Uint64("generation", gen).Msg("Chat connection open")
	return nil
}

// Send starts a new exchange and transmits text as one frame. Any rejection happens
// before the network is touched.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return ErrEmptyMessage
	}
	if _, ok := s.tokens.AccessToken(); !ok {
		s.mu.Unlock()
		return ErrUnauthenticated
	}
	if _, err := s.reassembler.Begin(text); err != nil {
		s.mu.Unlock()
		return err
	}
	conn := s.conn
	gen := s.generation
	s.mu.Unlock()

	if err := conn.Write(ctx, text); err != nil {
		s.apply(gen, event{kind: eventClosed, err: err})
		return apperrors.Mark(ErrTransportFailure, errors.Wrap(err, "[Session.Send] Write"))
	}
	return nil
}

// Close shuts the connection down. An exchange still open is reported as interrupted
// and kept out of the transcript.
func (s *Session) Close() error {
	s.mu.Lock()
	switch s.state {
	case StateClosed, StateClosing:
		s.mu.Unlock()
		return nil
	case StateConnecting:
		s.generation++
		notes := s.setStateLocked(StateClosed)
		s.mu.Unlock()
		s.notify(notes)
		return nil
	}

	conn, stop := s.detachLocked()
	notes := s.setStateLocked(StateClosing)
	notes = append(notes, s.interruptLocked()...)
	s.mu.Unlock()
	s.notify(notes)

	err := conn.Close()
	stop()

	s.mu.Lock()
	notes = s.setStateLocked(StateClosed)
	s.mu.Unlock()
	s.notify(notes)

	if err != nil {
		return errors.Wrap(err, "[Session.Close]")
	}
	return nil
}

// State returns the connection state.
func (s *Session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the completed exchanges in order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reassembler.Transcript()
}

// Interrupted returns exchanges cut off by close or transport failure.
func (s *Session) Interrupted() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reassembler.Interrupted()
}

// Pending returns the exchange currently receiving chunks.
func (s *Session) Pending() (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reassembler.Pending()
}

func (s *Session) read(ctx context.Context, conn Conn, events chan<- event) {
	defer close(events)
	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			events <- event{kind: eventClosed, err: err}
			return
		}
		events <- event{kind: eventFrame, data: frame}
	}
}

func (s *Session) dispatch(gen uint64, events <-chan event) {
	for ev := range events {
		s.apply(gen, ev)
	}
}

// apply runs one event against the session if it belongs to the current connection.
func (s *Session) apply(gen uint64, ev event) {
	s.mu.Lock()
	if gen != s.generation || s.state != StateOpen {
		s.mu.Unlock()
		return
	}

	if ev.kind == eventFrame {
		var notes []Notification
		turn, done, err := s.reassembler.Feed(ev.data)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Chat protocol violation")
			notes = append(notes, Notification{Kind: ProtocolViolation, State: s.state, Chunk: ev.data, Err: err})
		case done:
			notes = append(notes, Notification{Kind: ExchangeComplete, State: s.state, Turn: turn})
		}
		s.mu.Unlock()
		s.notify(notes)
		return
	}

	conn, stop := s.detachLocked()
	var notes []Notification
	if !errors.Is(ev.err, ErrConnClosed) {
		log.Err(ev.err).Msg("Chat connection lost")
		notes = append(notes, Notification{
			Kind:  TransportFailure,
			State: StateClosed,
			Err:   apperrors.Mark(ErrTransportFailure, ev.err),
		})
	} else {
		log.Info().Msg("Chat connection closed by server")
	}
	notes = append(notes, s.interruptLocked()...)
	notes = append(notes, s.setStateLocked(StateClosed)...)
	s.mu.Unlock()

	_ = conn.Close()
	stop()
	s.notify(notes)
}

// detachLocked retires the current connection so no further events are applied.
func (s *Session) detachLocked() (Conn, context.CancelFunc) {
	conn, stop := s.conn, s.stopReader
	s.generation++
	s.conn = nil
	s.stopReader = nil
	return conn, stop
}

func (s *Session) interruptLocked() []Notification {
	turn, ok := s.reassembler.Interrupt()
	if !ok {
		return nil
	}
	return []Notification{{Kind: ExchangeInterrupted, State: s.state, Turn: turn}}
}

func (s *Session) setStateLocked(state ConnectionState) []Notification {
	if s.state == state {
		return nil
	}
	s.state = state
	return []Notification{{Kind: StateChanged, State: state}}
}

func (s *Session) notify(notes []Notification) {
	for _, n := range notes {
		for _, observer := range s.observers {
			observer(n)
		}
	}
}
