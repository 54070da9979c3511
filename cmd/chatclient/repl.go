package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/pkg/errors"
)

const (
	cmdQuit   = "/quit"
	cmdLogin  = "/login"
	cmdLogout = "/logout"
)

// repl reads messages and commands line by line.
type repl struct {
	in      io.Reader
	out     io.Writer
	chatter chatter
	login   func(ctx context.Context) error
	logout  func(ctx context.Context) error
}

func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	fmt.Fprintf(r.out, "Type a message, or %s, %s, %s.\n", cmdLogin, cmdLogout, cmdQuit)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case cmdQuit:
			return nil
		case cmdLogin:
			if err := r.login(ctx); err != nil {
				fmt.Fprintf(r.out, "login failed: %v\n", err)
			}
		case cmdLogout:
			_ = r.chatter.Close()
			if err := r.logout(ctx); err != nil {
				fmt.Fprintf(r.out, "logout: %v\n", err)
			}
			fmt.Fprintf(r.out, "Logged out. Use %s to log in again.\n", cmdLogin)
		default:
			r.ask(ctx, line)
		}
	}
}

func (r *repl) ask(ctx context.Context, text string) {
	reply, err := r.chatter.Ask(ctx, text)
	switch {
	case err == nil:
		fmt.Fprintf(r.out, "bot: %s\n", reply)
	case errors.Is(err, errInterrupted):
		fmt.Fprintf(r.out, "bot: %s [interrupted]\n", reply)
	case errors.Is(err, chat.ErrUnauthenticated):
		fmt.Fprintf(r.out, "Not logged in. Use %s.\n", cmdLogin)
	default:
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}
