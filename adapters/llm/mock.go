package llm

import (
	"context"
	"fmt"
	"sync"

	"gochart/ports"
)

// MockLLMClient is a scripted completion client for testing. Each call
// consumes the next Responses/Errors entry; the last entry repeats.
type MockLLMClient struct {
	Responses []string
	Errors    []error
	Usage     *ports.UsageData

	mu    sync.Mutex
	Calls []ports.CompletionRequest
}

// NewMockLLMClient returns a client answering with the given responses in order
func NewMockLLMClient(responses ...string) *MockLLMClient {
	return &MockLLMClient{Responses: responses}
}

func (m *MockLLMClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.Calls)
	m.Calls = append(m.Calls, req)

	if idx < len(m.Errors) && m.Errors[idx] != nil {
		return nil, m.Errors[idx]
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock client has no scripted response")
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	resp := &ports.CompletionResponse{Content: m.Responses[idx]}
	if m.Usage != nil {
		u := *m.Usage
		resp.Usage = &u
	}
	return resp, nil
}

// CallCount returns the number of Complete calls made so far
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
