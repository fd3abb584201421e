package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockGenerator is a deterministic generator used when no API key is
// configured and in tests. It suggests the first few product ids it was
// given and records every request.
type MockGenerator struct {
	maxSuggestions int

	mu       sync.Mutex
	requests []GenerateRequest
}

// NewMockGenerator returns a generator suggesting up to maxSuggestions ids.
func NewMockGenerator(maxSuggestions int) *MockGenerator {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &MockGenerator{maxSuggestions: maxSuggestions}
}

type mockSuggestion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Generate returns a short summary plus a fenced suggestions payload.
func (m *MockGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if len(req.ProductIDs) == 0 {
		return "Hiện chưa có sản phẩm nào phù hợp với yêu cầu của bạn.", nil
	}
	n := min(len(req.ProductIDs), m.maxSuggestions)
	payload := struct {
		Suggestions []mockSuggestion `json:"suggestions"`
	}{}
	for _, id := range req.ProductIDs[:n] {
		payload.Suggestions = append(payload.Suggestions, mockSuggestion{ID: id, Reason: "Phù hợp với yêu cầu của bạn"})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Mình đã chọn ra %d sản phẩm phù hợp nhất cho bạn.\n```json\n%s\n```", n, data), nil
}

// Requests returns a copy of the recorded requests.
func (m *MockGenerator) Requests() []GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateRequest(nil), m.requests...)
}
