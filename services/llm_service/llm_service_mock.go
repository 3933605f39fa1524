package llm_service

import (
	"context"
)

// MockLLMService substitutes the Gemini client in tests. It records every
// prompt it receives; when CallLLMFunc is nil a canned response is returned.
type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, config map[string]interface{}, prompt string) (string, error)

	Calls      int
	LastPrompt string
}

func (m *MockLLMService) CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, config, prompt)
	}
	return "mock response", nil
}
