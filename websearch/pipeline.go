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


package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
)

const (
	// DefaultMaxResults is how many hits are requested from the provider
	// when the caller does not specify a count.
	DefaultMaxResults = 10
	// DefaultTopK is how many ranked hits appear in the formatted output
	// when the caller does not specify a count.
	DefaultTopK = 5
)

const optimizePromptTemplate = `Rewrite the following question as concise web search keywords.
Reply with the keywords only, on a single line, with no explanation.

Question: %s

Keywords:`

// SearchProvider returns raw web results for a query string.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]core.WebResult, error)
}

// Pipeline optimizes a question into keywords, searches the web, and ranks
// the hits against the original question.
type Pipeline struct {
	provider SearchProvider
	llm      ai.LLM
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new web search pipeline.
func NewPipeline(provider SearchProvider, aiProvider ai.Provider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrSearchProviderRequired
	}
	if aiProvider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		provider: provider,
		llm:      aiProvider.LLM(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// OptimizeQuery asks the LLM to rewrite the question into search keywords.
// Only the first line of the reply is used. If the LLM fails or replies with
// nothing usable, the raw question is returned unchanged.
func (p *Pipeline) OptimizeQuery(ctx context.Context, query string) string {
	reply, err := p.llm.Invoke(ctx, fmt.Sprintf(optimizePromptTemplate, query))
	if err != nil {
		p.logger.Warn("query optimization failed, using raw query", "err", err)
		return query
	}

	optimized := strings.TrimSpace(reply)
	if i := strings.IndexByte(optimized, '\n'); i >= 0 {
		optimized = strings.TrimSpace(optimized[:i])
	}
	if optimized == "" {
		return query
	}
	return optimized
}

// SearchAndSummarize runs the full pipeline and returns a formatted text
// block of the top-ranked results. maxResults and topK fall back to the
// package defaults when non-positive. Provider failures propagate; only the
// optimize step degrades silently.
func (p *Pipeline) SearchAndSummarize(ctx context.Context, query string, maxResults, topK int) (string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	optimized := p.OptimizeQuery(ctx, query)
	p.logger.Debug("searching", "query", query, "optimized", optimized)

	results, err := p.provider.Search(ctx, optimized, maxResults)
	if err != nil {
		return "", fmt.Errorf("web search failed: %w", err)
	}

	ranked := RankResults(results, optimized, topK)
	return formatResults(query, optimized, ranked), nil
}

func formatResults(query, optimized string, results []core.WebResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original Question: %s\n", query)
	fmt.Fprintf(&b, "Optimized Question: %s\n\n", optimized)
	b.WriteString("Search Results:\n")

	if len(results) == 0 {
		b.WriteString("\nNo results found.\n")
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n%s\nURL: %s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}
