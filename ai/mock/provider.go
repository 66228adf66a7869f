// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/chatflow/chatflow/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder and LLM instances.
type MockProvider struct {
	embedder *MockEmbedder
	llm      *MockLLM
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns the concrete type so tests can reach GetMockEmbedder()/GetMockLLM()
// for assertions; it satisfies ai.Provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		llm:      NewMockLLM(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock
// services. This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, llm *MockLLM) *MockProvider {
	return &MockProvider{
		embedder: embedder,
		llm:      llm,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// LLM returns the mock LLM.
func (p *MockProvider) LLM() ai.LLM {
	return p.llm
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockLLM returns the concrete mock LLM for test assertions.
func (p *MockProvider) GetMockLLM() *MockLLM {
	return p.llm
}
