package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-pkce-chat/auth"
	"github.com/jrsteele09/go-pkce-chat/auth/handoff"
	"github.com/jrsteele09/go-pkce-chat/internal/config"
	"github.com/jrsteele09/go-pkce-chat/internal/logging"
	"github.com/jrsteele09/go-pkce-chat/loopback"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Chat client failed")
	}
}

func run() error {
	c, err := config.Load(config.GetEnv(config.ConfigFileVar, ""))
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel(), os.Stderr)
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent := loopback.NewAgent(os.Stdout)
	session, err := auth.NewSession(auth.Config{
		Issuer:                c.GetIssuer(),
		ClientID:              c.GetClientID(),
		RedirectURI:           c.GetRedirectURI(),
		Scopes:                c.GetScopes(),
		PostLogoutRedirectURI: c.GetPostLogoutRedirectURI(),
		VerifierLength:        c.GetVerifierLength(),
		HandoffMaxAge:         c.GetHandoffMaxAge(),
	}, agent, handoff.NewInMemoryRepo())
	if err != nil {
		return err
	}

	callbacks, err := loopback.NewCallbackServer(c.GetRedirectURI(), agent, session)
	if err != nil {
		return err
	}
	if err := callbacks.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = callbacks.Shutdown(shutdownCtx)
	}()

	chatter, err := newChatter(c, session)
	if err != nil {
		return err
	}
	defer chatter.Close()

	login := func(ctx context.Context) error {
		return loginAndWait(ctx, session, callbacks, c.GetHandoffMaxAge())
	}
	if err := login(ctx); err != nil {
		return err
	}

	r := &repl{
		in:      os.Stdin,
		out:     os.Stdout,
		chatter: chatter,
		login:   login,
		logout:  session.Logout,
	}
	return r.run(ctx)
}

// loginFlow is the part of *auth.Session the login wait drives.
type loginFlow interface {
	Login(ctx context.Context) error
	State() auth.State
	Identity() (auth.Identity, bool)
}

// callbackWaiter is the part of *loopback.CallbackServer the login wait drives.
type callbackWaiter interface {
	Reset()
	Wait(ctx context.Context) error
}

// loginAndWait starts a login and blocks until the browser comes back with a callback
// that authenticates the session, one fails, or timeout passes.
func loginAndWait(ctx context.Context, session loginFlow, callbacks callbackWaiter, timeout time.Duration) error {
	callbacks.Reset()
	if err := session.Login(ctx); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for session.State() != auth.StateAuthenticated {
		if err := callbacks.Wait(waitCtx); err != nil {
			return err
		}
		if session.State() != auth.StateAuthenticated {
			log.Debug().Msg("Callback did not complete the login, still waiting")
		}
	}

	if identity, ok := session.Identity(); ok {
		fmt.Printf("Logged in as %s\n", firstNonEmpty(identity.Name, identity.Email, identity.Subject))
	} else {
		fmt.Println("Logged in")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
