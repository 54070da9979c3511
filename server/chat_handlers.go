package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const maxChatBody = 64 << 10

// ChatHandler answers POST /chat with the whole reply in one JSON response.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
			writeJSONError(w, "invalid_request", "body must be {\"message\": string}", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeJSONError(w, "invalid_request", "message is empty", http.StatusBadRequest)
			return
		}

		chunks, err := s.responder.Reply(r.Context(), subjectOf(r.Context()), req.Message)
		if err != nil {
			log.Err(err).Msg("Responder failed")
			writeJSONError(w, "server_error", "no reply available", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(chat.Response{Response: joinChunks(chunks)})
	}
}

// WebsocketHandler serves GET /ws. Each inbound text frame is answered with the reply
// chunks followed by the terminator frame.
func (s *Server) WebsocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: s.originPatterns(),
		})
		if err != nil {
			log.Err(err).Msg("Websocket accept failed")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		subject := subjectOf(r.Context())
		log.Info().Str("subject", subject).Msg("Chat client connected")

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
				default:
					log.Debug().Err(err).Msg("Chat client read failed")
				}
				log.Info().Str("subject", subject).Msg("Chat client disconnected")
				return
			}

			if err := s.streamReply(ctx, conn, subject, string(data)); err != nil {
				log.Err(err).Msg("Streaming reply failed")
				conn.Close(websocket.StatusInternalError, "reply failed")
				return
			}
		}
	}
}

func (s *Server) streamReply(ctx context.Context, conn *websocket.Conn, subject, message string) error {
	chunks, err := s.responder.Reply(ctx, subject, message)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := conn.Write(ctx, websocket.MessageText, []byte(chunk)); err != nil {
			return err
		}
	}
	return conn.Write(ctx, websocket.MessageText, []byte(s.terminator))
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers OPTIONS requests without an Origin header.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", s.config.GetAllowedMethods())
		w.WriteHeader(http.StatusNoContent)
	}
}

// originPatterns turns the allowed origins into host patterns for the websocket
// handshake origin check.
func (s *Server) originPatterns() []string {
	var patterns []string
	for origin := range s.config.GetAllowedOrigins() {
		if origin == "*" {
			return []string{"*"}
		}
		host := origin
		if i := strings.Index(host, "://"); i >= 0 {
			host = host[i+3:]
		}
		patterns = append(patterns, host)
	}
	return patterns
}

func subjectOf(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}

// writeJSONError writes an OAuth2 style error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
