// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.LLM, and
// ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	llm := mock.NewMockLLM()
//	llm.InvokeFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "canned answer", nil
//	}
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic dense and sparse vectors derived
//     from the text hash
//   - MockLLM: echoes the prompt back with a fixed prefix
//   - MockProvider: aggregates mock embedder and LLM
package mock
