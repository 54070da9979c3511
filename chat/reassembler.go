package chat

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultTerminator is the frame that marks the end of a streamed reply.
const DefaultTerminator = "[END]"

type openExchange struct {
	turn Turn
	text strings.Builder
}

// Reassembler turns a stream of reply chunks into completed turns. At most one exchange
// is open at a time. It is not safe for concurrent use; Session serialises access.
type Reassembler struct {
	terminator  string
	open        *openExchange
	transcript  []Turn
	interrupted []Turn
}

// NewReassembler creates a Reassembler. An empty terminator means DefaultTerminator.
func NewReassembler(terminator string) *Reassembler {
	if terminator == "" {
		terminator = DefaultTerminator
	}
	return &Reassembler{terminator: terminator}
}

// Terminator returns the end-of-reply marker.
func (r *Reassembler) Terminator() string {
	return r.terminator
}

// Begin opens an exchange for userText with an empty bot reply.
func (r *Reassembler) Begin(userText string) (Turn, error) {
	if r.open != nil {
		return Turn{}, ErrExchangeInFlight
	}
	r.open = &openExchange{turn: Turn{
		ID:       uuid.New(),
		UserText: userText,
		Status:   TurnPending,
	}}
	return r.open.turn, nil
}

// Feed applies one inbound chunk. The terminator closes the open exchange and returns
// it, frozen, with done set. Any other chunk is appended verbatim.
func (r *Reassembler) Feed(chunk string) (turn Turn, done bool, err error) {
	if r.open == nil {
		return Turn{}, false, errors.Wrapf(ErrProtocolViolation, "chunk %q with no open exchange", chunk)
	}
	if chunk != r.terminator {
		r.open.text.WriteString(chunk)
		return Turn{}, false, nil
	}

	turn = r.open.turn
	turn.BotText = r.open.text.String()
	turn.Status = TurnComplete
	r.open = nil
	r.transcript = append(r.transcript, turn)
	return turn, true, nil
}

// Interrupt abandons the open exchange, if any. The partial reply is kept aside and
// never enters the transcript.
func (r *Reassembler) Interrupt() (Turn, bool) {
	if r.open == nil {
		return Turn{}, false
	}
	turn := r.open.turn
	turn.BotText = r.open.text.String()
	turn.Status = TurnInterrupted
	r.open = nil
	r.interrupted = append(r.interrupted, turn)
	return turn, true
}

// Pending returns a snapshot of the open exchange.
func (r *Reassembler) Pending() (Turn, bool) {
	if r.open == nil {
		return Turn{}, false
	}
	turn := r.open.turn
	turn.BotText = r.open.text.String()
	return turn, true
}

// Record appends a turn completed outside the stream, as request/response mode does.
func (r *Reassembler) Record(turn Turn) {
	r.transcript = append(r.transcript, turn)
}

// Transcript returns the completed turns in order.
func (r *Reassembler) Transcript() []Turn {
	return append([]Turn(nil), r.transcript...)
}

// Interrupted returns the exchanges that were cut off before their terminator.
func (r *Reassembler) Interrupted() []Turn {
	return append([]Turn(nil), r.interrupted...)
}
