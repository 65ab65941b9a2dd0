package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing and offline runs.
// It answers from a handler when one is set, otherwise from a FIFO queue
// of canned responses. All requests are recorded.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	handler   func(Request) MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewMockProviderFunc creates a MockProvider that computes each response
// from the request. The handler may be called concurrently.
func NewMockProviderFunc(fn func(Request) MockResponse) *MockProvider {
	return &MockProvider{handler: fn}
}

// Generate returns the handler's or next canned response. An empty queue
// yields ErrProviderUnavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	handler := m.handler

	var resp MockResponse
	if handler == nil {
		if len(m.responses) == 0 {
			m.mu.Unlock()
			return nil, &ErrProviderUnavailable{Err: nil}
		}
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if handler != nil {
		resp = handler(req)
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
