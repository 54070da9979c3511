package chat

import "github.com/google/uuid"

// TurnStatus is the lifecycle position of one user to bot exchange.
type TurnStatus int

const (
	TurnPending TurnStatus = iota
	TurnComplete
	TurnInterrupted
)

func (s TurnStatus) String() string {
	switch s {
	case TurnPending:
		return "pending"
	case TurnComplete:
		return "complete"
	case TurnInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Turn is one user message and the bot reply assembled for it.
type Turn struct {
	ID       uuid.UUID
	UserText string
	BotText  string
	Status   TurnStatus
}

// TokenSource supplies the bearer token for outbound requests. ok is false while the
// user is not authenticated. *auth.Session satisfies it.
type TokenSource interface {
	AccessToken() (token string, ok bool)
}

// Request is the body of POST /chat.
type Request struct {
	Message string `json:"message"`
}

// Response is the reply to POST /chat.
type Response struct {
	Response string `json:"response"`
}
