package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-pkce-chat/internal/config"
	"github.com/jrsteele09/go-pkce-chat/internal/logging"
	"github.com/jrsteele09/go-pkce-chat/server"
	"github.com/rs/zerolog/log"
)

var errPanicRecovered = errors.New("panic recovered")

func main() {
	for {
		err := run()
		if err == nil {
			break
		}
		if !errors.Is(err, errPanicRecovered) {
			log.Fatal().Err(err).Msg("Error running server")
		}
		log.Err(err).Msg("Restarting server")
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errPanicRecovered
		}
	}()

	c, err := config.Load(config.GetEnv(config.ConfigFileVar, ""))
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel(), os.Stderr)
	displayAppname(c.GetAppName())

	verifier, err := newTokenVerifier(context.Background(), c)
	if err != nil {
		return err
	}
	handler, err := server.New(c, verifier, server.EchoResponder{ChunkSize: c.GetChunkSize()})
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newTokenVerifier prefers OIDC verification when an issuer is configured.
func newTokenVerifier(ctx context.Context, c config.Config) (server.TokenVerifier, error) {
	if issuer := c.GetTokenIssuer(); issuer != "" {
		log.Info().Str("issuer", issuer).Msg("Verifying bearer tokens against OIDC issuer")
		return server.NewOIDCVerifier(ctx, issuer, c.GetTokenAudience(), nil)
	}
	if secret := c.GetTokenSecret(); secret != "" {
		log.Info().Msg("Verifying bearer tokens with shared HS256 secret")
		return server.NewHMACVerifier(secret, c.GetTokenAudience())
	}
	return nil, errors.New("TOKEN_ISSUER or TOKEN_SECRET must be set")
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
