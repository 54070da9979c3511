package loopback

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/pkg/errors"
)

// Agent is the user agent of a command line client. It cannot navigate by itself, so
// Navigate shows the URL to the user; the browser's return to the redirect URI is seen
// by CallbackServer, which records it as the agent's location.
type Agent struct {
	out    io.Writer
	opener func(string) error

	mu       sync.Mutex
	location *url.URL
}

// AgentOption defines a function type to modify the Agent instance.
type AgentOption func(*Agent)

// WithOpener sets a function that opens URLs in a browser. Failures are not fatal; the
// URL is always printed as well.
func WithOpener(opener func(string) error) AgentOption {
	return func(a *Agent) {
		a.opener = opener
	}
}

// NewAgent creates an Agent that prints navigation targets to out.
func NewAgent(out io.Writer, options ...AgentOption) *Agent {
	a := &Agent{out: out}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *Agent) Navigate(_ context.Context, target *url.URL) error {
	if target == nil {
		return errors.New("[Agent.Navigate] target is required")
	}
	if _, err := fmt.Fprintf(a.out, "\nOpen this URL in your browser:\n\n  %s\n\n", target); err != nil {
		return errors.Wrap(err, "[Agent.Navigate]")
	}
	if a.opener != nil {
		if err := a.opener(target.String()); err != nil {
			fmt.Fprintf(a.out, "(could not open a browser: %v)\n", err)
		}
	}
	return nil
}

func (a *Agent) Location() *url.URL {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *Agent) ReplaceLocation(u *url.URL) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = u
}
