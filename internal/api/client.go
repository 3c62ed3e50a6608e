package api

import (
	"context"
	"fmt"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/logger"
	"github.com/diogo/concierge/internal/models"
)

// ChatClientInterface is what the chat view and the one-shot command need
// from the transport. SendMessage never fails: every error is folded into
// the returned ReplyResult.
type ChatClientInterface interface {
	SendMessage(ctx context.Context, text string) models.ReplyResult
	Endpoint() string
}

// ChatClient posts user messages to the chatbot endpoint
type ChatClient struct {
	httpClient tls_client.HttpClient
	endpoint   string
	timeout    time.Duration
	log        zerolog.Logger
}

// Ensure ChatClient implements ChatClientInterface
var _ ChatClientInterface = (*ChatClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithEndpoint sets the URL messages are POSTed to
func WithEndpoint(endpoint string) ClientOption {
	return func(c *ChatClient) {
		c.endpoint = endpoint
	}
}

// WithTimeout sets the transport timeout. Zero keeps the transport default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *ChatClient) {
		c.log = l
	}
}

// NewClient creates a new ChatClient
func NewClient(opts ...ClientOption) (*ChatClient, error) {
	client := &ChatClient{
		endpoint: models.DefaultEndpoint,
		timeout:  300 * time.Second,
		log:      logger.For("api"),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		if client.timeout > 0 {
			options = append(options, tls_client.WithTimeoutSeconds(int(client.timeout/time.Second)))
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the chatbot URL
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// Close releases idle connections
func (c *ChatClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// SendMessage sends text to the chatbot and resolves the reply.
// The caller is expected to have trimmed text and rejected empty input.
func (c *ChatClient) SendMessage(ctx context.Context, text string) models.ReplyResult {
	env, err := c.exchange(ctx, text)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.endpoint).Msg("chatbot request failed")
		return models.ReplyResult{
			Text:   models.ConnectionErrorReply,
			Source: models.ReplyConnectionError,
			Err:    err,
		}
	}

	reply, source := env.Reply()
	c.log.Debug().Str("source", source.String()).Msg("reply resolved")
	return models.ReplyResult{Text: reply, Source: source}
}
