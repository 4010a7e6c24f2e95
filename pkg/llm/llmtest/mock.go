// Package llmtest provides model doubles for tests.
package llmtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/entrhq/cobrowse/pkg/llm"
)

// MockProvider is a testify mock implementing llm.Provider.
type MockProvider struct {
	mock.Mock
}

// Generate implements llm.Provider.
func (m *MockProvider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*llm.Response)
	return resp, args.Error(1)
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Model implements llm.Provider.
func (m *MockProvider) Model() string { return "mock-model" }

// Requests returns the requests received so far, in order.
func (m *MockProvider) Requests() []*llm.Request {
	var reqs []*llm.Request
	for _, call := range m.Calls {
		if call.Method != "Generate" {
			continue
		}
		if req, ok := call.Arguments.Get(1).(*llm.Request); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// Script returns a provider that answers with responses in order and then
// keeps repeating the last one.
func Script(responses ...*llm.Response) *MockProvider {
	m := &MockProvider{}
	for i, resp := range responses {
		call := m.On("Generate", mock.Anything, mock.Anything).Return(resp, nil)
		if i < len(responses)-1 {
			call.Once()
		}
	}
	return m
}
