package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/jrsteele09/go-pkce-chat/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	verifier   TokenVerifier
	responder  Responder
	limiter    *RateLimiter
	terminator string
}

func New(config config.Config, verifier TokenVerifier, responder Responder) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if verifier == nil {
		return nil, errors.New("[Server New] token verifier is required")
	}
	if responder == nil {
		return nil, errors.New("[Server New] responder is required")
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		verifier:   verifier,
		responder:  responder,
		limiter:    NewRateLimiter(config.GetRateLimitPerMinute(), config.GetRateBurst()),
		terminator: config.GetTerminator(),
	}
	if s.terminator == "" {
		s.terminator = chat.DefaultTerminator
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("route")
	}
}
