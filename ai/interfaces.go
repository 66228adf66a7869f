package ai

import (
	"context"

	"github.com/chatflow/chatflow/core"
)

// HybridVectors carries the dense and sparse embeddings for a batch of
// texts. Both slices are parallel to the input batch: Dense[i] and Sparse[i]
// belong to texts[i].
type HybridVectors struct {
	Dense  [][]float32
	Sparse []core.SparseVector
}

// Embedder converts text batches to dense and sparse vector representations.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts generates hybrid embeddings for a batch of texts in a
	// single call. The input must be non-empty. On transport failure or a
	// malformed response (missing either vector kind, or vector counts not
	// matching the batch size) an error wrapping core.ErrTransport or
	// core.ErrBackendProtocol is returned; callers must not substitute
	// empty vectors. One attempt per invocation, no retries.
	EmbedTexts(ctx context.Context, texts []string) (*HybridVectors, error)
}

// LLM is the text-completion oracle. Implementations must be thread-safe
// for concurrent use.
type LLM interface {
	// Invoke sends a single prompt and returns the generated text.
	// Errors wrap core.ErrGeneration.
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the hybrid embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// LLM returns the text-completion oracle.
	// The returned LLM is safe for concurrent use.
	LLM() LLM

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
