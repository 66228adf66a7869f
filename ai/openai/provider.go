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


package openai

import (
	"log/slog"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/ai/hybrid"
)

// Provider implements ai.Provider using an OpenAI-compatible chat service
// and the hybrid embedding server.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	llm      *LLM
	logger   *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a new AI provider. The config is validated and
// normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction and
// prevent coupling to implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := hybrid.NewClient(config)
	if err != nil {
		return nil, err
	}

	llm, err := newLLM(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		llm:      llm,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the hybrid embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// LLM returns the text-completion oracle.
func (p *Provider) LLM() ai.LLM {
	return p.llm
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
