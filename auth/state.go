package auth

// State is the position of a Session in the PKCE login flow.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingRedirect
	StateExchangingCode
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingRedirect:
		return "awaiting_redirect"
	case StateExchangingCode:
		return "exchanging_code"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}
