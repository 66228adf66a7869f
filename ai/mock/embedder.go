package mock

import (
	"context"
	"hash/fnv"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) (*ai.HybridVectors, error)

	callCount int
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedTexts generates deterministic hybrid vectors for each text.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) (*ai.HybridVectors, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := &ai.HybridVectors{
		Dense:  make([][]float32, len(texts)),
		Sparse: make([]core.SparseVector, len(texts)),
	}
	for i, text := range texts {
		vectors.Dense[i] = generateDeterministicVector(text, 16)
		vectors.Sparse[i] = generateDeterministicSparse(text)
	}
	return vectors, nil
}

// CallCount returns the number of times EmbedTexts was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextsFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector from
// text. It uses FNV hash to ensure the same text always produces the same
// vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit vector
	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0) / float32(sumSquares)
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}

// generateDeterministicSparse creates a small deterministic sparse vector
// from the text hash.
func generateDeterministicSparse(text string) core.SparseVector {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	indices := make([]uint32, 4)
	values := make([]float32, 4)
	for i := range indices {
		seed = seed*1664525 + 1013904223
		indices[i] = seed % 30000
		values[i] = float32(seed%100)/100.0 + 0.01
	}
	return core.SparseVector{Indices: indices, Values: values}
}
