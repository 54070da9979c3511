package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/stretchr/testify/require"
)

type scriptedChatter struct {
	replies map[string]string
	errs    map[string]error
	asked   []string
	closed  int
}

func (s *scriptedChatter) Ask(_ context.Context, text string) (string, error) {
	s.asked = append(s.asked, text)
	return s.replies[text], s.errs[text]
}

func (s *scriptedChatter) Close() error {
	s.closed++
	return nil
}

func TestRepl(t *testing.T) {
	c := &scriptedChatter{
		replies: map[string]string{"hi": "You said: hi", "cut": "You sa"},
		errs:    map[string]error{"cut": errInterrupted, "anon": chat.ErrUnauthenticated},
	}
	var logins, logouts int
	out := &bytes.Buffer{}
	r := &repl{
		in:      strings.NewReader("hi\n\n  cut  \n/logout\nanon\n/login\n/quit\nnever\n"),
		out:     out,
		chatter: c,
		login:   func(context.Context) error { logins++; return nil },
		logout:  func(context.Context) error { logouts++; return nil },
	}

	require.NoError(t, r.run(context.Background()))

	require.Equal(t, []string{"hi", "cut", "anon"}, c.asked)
	require.Equal(t, 1, logins)
	require.Equal(t, 1, logouts)
	require.Equal(t, 1, c.closed)
	require.Contains(t, out.String(), "bot: You said: hi\n")
	require.Contains(t, out.String(), "bot: You sa [interrupted]\n")
	require.Contains(t, out.String(), "Not logged in. Use /login.")
}

func TestRepl_EndOfInput(t *testing.T) {
	r := &repl{in: strings.NewReader("hi"), out: &bytes.Buffer{}, chatter: &scriptedChatter{}}
	require.NoError(t, r.run(context.Background()))
}
