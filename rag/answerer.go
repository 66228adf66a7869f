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


package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/index"
)

// DefaultLimit is the number of documents retrieved per question when the
// caller does not specify one.
const DefaultLimit = 3

// NoDocumentsMessage is returned when retrieval succeeds but finds nothing.
const NoDocumentsMessage = "Sorry, no relevant documents were found."

// FallbackDisclaimer prefixes the degraded answer used when the LLM is
// unreachable. Callers that need to detect degradation inspect the response
// text for this prefix; there is no separate status channel.
const FallbackDisclaimer = "(Note: the text generation service is currently unreachable; returning the retrieved content instead.)"

// fallbackContextLimit caps how much retrieved context the degraded answer
// carries, in characters.
const fallbackContextLimit = 800

// Answerer orchestrates retrieval-augmented answering: embed the question,
// run an owner-scoped hybrid query, and synthesize an answer with the LLM.
type Answerer struct {
	idx      index.Index
	embedder ai.Embedder
	llm      ai.LLM
	logger   *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates a new answerer.
func NewAnswerer(idx index.Index, provider ai.Provider, opts ...Option) (*Answerer, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	a := &Answerer{
		idx:      idx,
		embedder: provider.Embedder(),
		llm:      provider.LLM(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Answer is the structured result of one question. RetrievedDocs is empty on
// every degraded path.
type Answer struct {
	Response      string                 `json:"response"`
	RetrievedDocs []core.RetrievalResult `json:"retrieved_docs"`
}

// Answer answers a question from the owner's documents in the given
// collection. It has no fatal error path by design: retrieval and generation
// failures degrade to textual explanations so the caller always receives a
// structured answer.
func (a *Answerer) Answer(ctx context.Context, query, collection, ownerID string, limit int) *Answer {
	if limit <= 0 {
		limit = DefaultLimit
	}

	retrieved, err := a.retrieve(ctx, query, collection, ownerID, limit)
	if err != nil {
		a.logger.Error("hybrid search failed", "collection", collection, "err", err)
		return &Answer{
			Response:      fmt.Sprintf("Retrieval error: %v", err),
			RetrievedDocs: []core.RetrievalResult{},
		}
	}

	if len(retrieved) == 0 {
		return &Answer{
			Response:      NoDocumentsMessage,
			RetrievedDocs: []core.RetrievalResult{},
		}
	}

	return &Answer{
		Response:      a.generate(ctx, query, retrieved),
		RetrievedDocs: retrieved,
	}
}

// retrieve embeds the query as a single-text batch and runs the hybrid
// query scoped to the owner.
func (a *Answerer) retrieve(ctx context.Context, query, collection, ownerID string, limit int) ([]core.RetrievalResult, error) {
	vectors, err := a.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	return a.idx.Query(ctx, collection, index.Query{
		Dense:   vectors.Dense[0],
		Sparse:  vectors.Sparse[0],
		OwnerID: ownerID,
		Limit:   limit,
	})
}

// generate invokes the LLM over the retrieved context. If generation fails,
// the answer falls back to a disclaimer plus the start of the context rather
// than an error.
func (a *Answerer) generate(ctx context.Context, query string, retrieved []core.RetrievalResult) string {
	texts := make([]string, len(retrieved))
	for i, doc := range retrieved {
		texts[i] = doc.Text
	}
	contextBlock := strings.Join(texts, "\n")

	answer, err := a.llm.Invoke(ctx, buildAnswerPrompt(contextBlock, query))
	if err != nil {
		a.logger.Error("llm generate failed", "err", err)
		return FallbackDisclaimer + "\n\n" + truncateRunes(contextBlock, fallbackContextLimit)
	}

	return answer
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
