package api

import (
	"context"
	"sync"

	"github.com/diogo/concierge/internal/models"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Reply is returned by SendMessage; ReplyFunc takes precedence when set
	Reply       models.ReplyResult
	ReplyFunc   func(text string) models.ReplyResult
	EndpointVal string

	mu   sync.Mutex
	sent []string
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) SendMessage(ctx context.Context, text string) models.ReplyResult {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.mu.Unlock()

	if m.ReplyFunc != nil {
		return m.ReplyFunc(text)
	}
	return m.Reply
}

func (m *MockChatClient) Endpoint() string {
	return m.EndpointVal
}

// Sent returns the messages passed to SendMessage, in call order
func (m *MockChatClient) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
