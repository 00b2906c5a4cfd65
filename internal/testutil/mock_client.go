// Package testutil provides mock clients shared by tests across packages.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/search"
)

// MockLLMClient is a configurable llm.Client for tests. The zero value
// answers every request with DefaultResponse ("" unless set) and records
// every request it receives.
type MockLLMClient struct {
	mu sync.Mutex

	// Responses maps the last user message to a canned reply. Requests
	// with no matching entry fall back to DefaultResponse.
	Responses       map[string]string
	DefaultResponse string

	// Err, when set, fails every call. FailTimes fails only the first N
	// calls with Err, then succeeds; it models transient errors.
	Err       error
	FailTimes int

	// StreamErr, when set, fails only the streaming path. Non-streaming
	// calls still succeed, which exercises fallback logic.
	StreamErr error

	Usage llm.Usage

	Calls       int
	LastRequest llm.ChatRequest
	Requests    []llm.ChatRequest
}

var _ llm.Client = (*MockLLMClient)(nil)

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastRequest = req
	m.Requests = append(m.Requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		if m.FailTimes == 0 {
			return nil, m.Err
		}
		if m.Calls <= m.FailTimes {
			return nil, m.Err
		}
	}

	content := m.DefaultResponse
	if len(req.Messages) > 0 {
		last := req.Messages[len(req.Messages)-1].Content
		if resp, ok := m.Responses[last]; ok {
			content = resp
		}
	}
	return &llm.ChatResponse{Content: content, Usage: m.Usage}, nil
}

func (m *MockLLMClient) ChatCompletionStream(ctx context.Context, req llm.ChatRequest) (llm.StreamReader, error) {
	m.mu.Lock()
	streamErr := m.StreamErr
	m.mu.Unlock()
	if streamErr != nil {
		return nil, streamErr
	}

	resp, err := m.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	return &mockStream{content: resp.Content}, nil
}

type mockStream struct {
	content string
	done    bool
}

func (s *mockStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.content, nil
}

func (s *mockStream) Close() error {
	s.done = true
	return nil
}

// MockSearchClient is a configurable search.Client for tests.
type MockSearchClient struct {
	mu sync.Mutex

	Hits []search.Hit
	Err  error

	Calls     int
	LastQuery string
	Queries   []string
}

var _ search.Client = (*MockSearchClient)(nil)

func (m *MockSearchClient) Search(ctx context.Context, query string, maxResults int) ([]search.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastQuery = query
	m.Queries = append(m.Queries, query)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	hits := m.Hits
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}
