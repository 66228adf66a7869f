package mock

import "context"

// MockLLM is a test double for ai.LLM.
// It allows custom behavior injection via a function field.
type MockLLM struct {
	// InvokeFunc is called by Invoke if set.
	// If nil, Invoke echoes the prompt back.
	InvokeFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
	prompts   []string
}

// NewMockLLM creates a mock LLM with default echo behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Invoke returns the injected behavior's result, or echoes the prompt.
func (m *MockLLM) Invoke(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, prompt)
	}

	return "mock response to: " + prompt, nil
}

// CallCount returns the number of times Invoke was called.
func (m *MockLLM) CallCount() int {
	return m.callCount
}

// Prompts returns all prompts passed to Invoke, in order.
func (m *MockLLM) Prompts() []string {
	return m.prompts
}

// Reset clears the call history and injected behavior.
func (m *MockLLM) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.InvokeFunc = nil
}
