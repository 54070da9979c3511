package chat

// ConnectionState is the lifecycle position of the streaming connection.
type ConnectionState int

const (
	StateClosed ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// NotificationKind identifies what a Notification reports.
type NotificationKind int

const (
	// StateChanged carries the new connection state.
	StateChanged NotificationKind = iota
	// ExchangeComplete carries the turn that was just added to the transcript.
	ExchangeComplete
	// ExchangeInterrupted carries a partial turn cut off by close or failure.
	ExchangeInterrupted
	// ProtocolViolation carries the offending chunk; the transcript is unchanged.
	ProtocolViolation
	// TransportFailure means the connection was lost rather than closed normally.
	TransportFailure
)

func (k NotificationKind) String() string {
	switch k {
	case StateChanged:
		return "state_changed"
	case ExchangeComplete:
		return "exchange_complete"
	case ExchangeInterrupted:
		return "exchange_interrupted"
	case ProtocolViolation:
		return "protocol_violation"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Notification is delivered to observers after the session state has been updated.
type Notification struct {
	Kind  NotificationKind
	State ConnectionState
	Turn  Turn
	Chunk string
	Err   error
}

// Observer receives notifications. It is called without the session lock held and may
// call back into the session.
type Observer func(Notification)
