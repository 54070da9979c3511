package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-pkce-chat/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const maxErrorBody = 512

// RequestClient talks to the backend one message at a time over POST /chat.
type RequestClient struct {
	endpoint   string
	tokens     TokenSource
	httpClient *http.Client

	mu          sync.Mutex
	reassembler *Reassembler
}

// RequestClientOption defines a function type to modify the RequestClient instance.
type RequestClientOption func(*RequestClient)

// WithRequestHTTPClient sets the base client; the bearer transport is layered on top.
func WithRequestHTTPClient(client *http.Client) RequestClientOption {
	return func(c *RequestClient) {
		c.httpClient = client
	}
}

// NewRequestClient creates a client for the chat endpoint, e.g. "http://localhost:8000/chat".
func NewRequestClient(endpoint string, tokens TokenSource, options ...RequestClientOption) (*RequestClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("[NewRequestClient] endpoint is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewRequestClient] token source is required")
	}

	c := &RequestClient{
		endpoint:    endpoint,
		tokens:      tokens,
		httpClient:  http.DefaultClient,
		reassembler: NewReassembler(DefaultTerminator),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Ask sends text and returns the completed turn. Without a token or with empty text no
// request is made.
func (c *RequestClient) Ask(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}
	token, ok := c.tokens.AccessToken()
	if !ok {
		return Turn{}, ErrUnauthenticated
	}

	body, err := json.Marshal(Request{Message: text})
	if err != nil {
		return Turn{}, errors.Wrap(err, "[RequestClient.Ask] json.Marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Turn{}, errors.Wrap(err, "[RequestClient.Ask] http.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
	)
	resp, err := client.Do(req)
	if err != nil {
		return Turn{}, apperrors.Mark(ErrChatRequestFailed, errors.Wrap(err, "[RequestClient.Ask] Do"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn().Int("status", resp.StatusCode).Msg("Chat request rejected")
		return Turn{}, apperrors.Mark(ErrChatRequestFailed,
			fmt.Errorf("[RequestClient.Ask] status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var reply Response
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Turn{}, apperrors.Mark(ErrChatRequestFailed, errors.Wrap(err, "[RequestClient.Ask] decode"))
	}

	turn := Turn{
		ID:       uuid.New(),
		UserText: text,
		BotText:  reply.Response,
		Status:   TurnComplete,
	}
	c.mu.Lock()
	c.reassembler.Record(turn)
	c.mu.Unlock()
	return turn, nil
}

// Transcript returns the completed exchanges in order.
func (c *RequestClient) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reassembler.Transcript()
}
