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


// Package mock provides a test double for websearch.SearchProvider.
package mock

import (
	"context"
	"sync"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/websearch"
)

// MockProvider is a mock implementation of websearch.SearchProvider.
type MockProvider struct {
	// SearchFunc allows injecting custom behavior.
	SearchFunc func(ctx context.Context, query string, maxResults int) ([]core.WebResult, error)
	// Results is returned by the default behavior.
	Results []core.WebResult

	mu      sync.Mutex
	calls   int
	queries []string
}

var _ websearch.SearchProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider that returns the given results.
func NewMockProvider(results ...core.WebResult) *MockProvider {
	return &MockProvider{Results: results}
}

// Search returns the injected behavior or the configured results.
func (m *MockProvider) Search(ctx context.Context, query string, maxResults int) ([]core.WebResult, error) {
	m.mu.Lock()
	m.calls++
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, maxResults)
	}

	results := m.Results
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// CallCount returns how many times Search was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Queries returns the queries passed to Search, in order.
func (m *MockProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
