package loopback

import (
	"context"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-pkce-chat/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Completer finishes a login from the agent's current location. *auth.Session
// satisfies it.
type Completer interface {
	CompleteLogin(ctx context.Context) error
}

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>{{.Detail}}</p></body></html>
`))

type pageData struct {
	Title  string
	Detail string
}

type loginResult struct {
	err error
}

// CallbackServer receives the provider's redirect on the loopback redirect URI.
type CallbackServer struct {
	redirect  *url.URL
	agent     *Agent
	completer Completer
	results   chan error

	mu   sync.Mutex
	last *loginResult
	srv  *http.Server
}

// NewCallbackServer creates a server for redirectURI, which must be an http URL on a
// loopback host.
func NewCallbackServer(redirectURI string, agent *Agent, completer Completer) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCallbackServer] redirect uri")
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, errors.Errorf("[NewCallbackServer] redirect uri %q must be http://host:port/path", redirectURI)
	}
	if agent == nil || completer == nil {
		return nil, errors.New("[NewCallbackServer] agent and completer are required")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return &CallbackServer{
		redirect:  u,
		agent:     agent,
		completer: completer,
		results:   make(chan error, 1),
	}, nil
}

// Start listens on the redirect URI's host and serves in the background.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.redirect.Host)
	if err != nil {
		return errors.Wrap(err, "[CallbackServer.Start] Listen")
	}

	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Callback server stopped")
		}
	}()
	log.Debug().Str("addr", listener.Addr().String()).Msg("Callback server listening")
	return nil
}

// Shutdown stops a server started with Start.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Wait blocks until a callback has been processed and returns its outcome.
func (s *CallbackServer) Wait(ctx context.Context) error {
	select {
	case err := <-s.results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset discards the outcome of any callback processed so far, so the next Wait only
// sees callbacks for the attempt about to start.
func (s *CallbackServer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	select {
	case <-s.results:
	default:
	}
}

// publish records a callback outcome. Wait receives only the latest one.
func (s *CallbackServer) publish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &loginResult{err: err}
	select {
	case <-s.results:
	default:
	}
	s.results <- err
}

func (s *CallbackServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.redirect.Path {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := *s.redirect
	location.RawQuery = r.URL.RawQuery
	if !oauthmodel.ParseCallback(&location).IsCallback() {
		s.renderLast(w)
		return
	}

	s.agent.ReplaceLocation(&location)
	s.publish(s.completer.CompleteLogin(r.Context()))

	// The session removed the code from the location; keep it out of the browser too
	if cleaned := s.agent.Location(); cleaned != nil && cleaned.RawQuery != location.RawQuery {
		http.Redirect(w, r, cleaned.RequestURI(), http.StatusSeeOther)
		return
	}
	s.renderLast(w)
}

func (s *CallbackServer) renderLast(w http.ResponseWriter) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	data := pageData{Title: "Waiting for login", Detail: "Start the login from the chat client."}
	status := http.StatusOK
	switch {
	case last == nil:
	case last.err != nil:
		data = pageData{Title: "Login failed", Detail: last.err.Error()}
		status = http.StatusUnauthorized
	default:
		data = pageData{Title: "Login complete", Detail: "You can close this tab and return to the terminal."}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = resultPage.Execute(w, data)
}
