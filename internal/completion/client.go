// Package completion implements the client for the remote chat-completion
// endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	widgeterrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// Fixed parameters of the chat-completion exchange.
const (
	Endpoint    = "https://api.openai.com/v1/chat/completions"
	Model       = "gpt-3.5-turbo"
	MaxTokens   = 1000
	Temperature = 0.7
)

// diagnosticBodyLimit caps how much of a rejected response body is logged.
const diagnosticBodyLimit = 2048

// Completer is the operation the session orchestrator depends on. Complete
// serializes the system instruction, the prior log and the new user turn
// into one request and returns the single reply turn.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []models.Message, userText string) (models.Message, error)
}

// Client talks to the fixed remote chat-completion resource over HTTPS,
// authenticated with the caller-supplied bearer credential.
type Client struct {
	httpClient tls_client.HttpClient
	credential string
	endpoint   string
}

var _ Completer = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the completion endpoint. Used by tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient injects a custom HTTP client. Used by tests.
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a completion client.
func NewClient(credential string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		credential: credential,
		endpoint:   Endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(300),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.httpClient = httpClient
	}

	return c, nil
}

// Only role and content travel on the wire; ids and timestamps stay local.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Complete issues one chat-completion request: the system instruction first,
// then every prior turn in original order, then the new user turn. The first
// completion choice becomes the reply. Any non-success status or malformed
// body yields a RemoteError with the raw body kept for diagnostics.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []models.Message, userText string) (models.Message, error) {
	msgs := make([]wireMessage, 0, len(history)+2)
	msgs = append(msgs, wireMessage{Role: string(models.RoleSystem), Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, wireMessage{Role: string(models.RoleUser), Content: userText})

	payload, err := json.Marshal(wireRequest{
		Model:       Model,
		Messages:    msgs,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Message{}, widgeterrors.NewRemoteError(0, c.endpoint, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Message{}, widgeterrors.NewRemoteError(resp.StatusCode, c.endpoint, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(body), diagnosticBodyLimit)).
			Msg("completion endpoint rejected the request")
		return models.Message{}, widgeterrors.NewRemoteError(resp.StatusCode, c.endpoint, string(body))
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		log.Error().
			Str("body", truncate(string(body), diagnosticBodyLimit)).
			Msg("completion response has no reply content")
		return models.Message{}, widgeterrors.NewRemoteError(resp.StatusCode, c.endpoint, string(body))
	}

	return models.NewMessage(models.RoleAssistant, content.String()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
