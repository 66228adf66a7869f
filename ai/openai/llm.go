package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
)

// LLM implements ai.LLM using OpenAI-compatible chat APIs.
type LLM struct {
	client      llms.Model
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

var _ ai.LLM = (*LLM)(nil)

// newLLM is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newLLM(config *ai.Config) (*LLM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication (vLLM, Ollama).
	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &LLM{
		client:      client,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-llm"),
	}, nil
}

// NewLLM creates a new LLM oracle using the provided configuration.
//
// Returns ai.LLM interface to enforce abstraction.
func NewLLM(config *ai.Config) (ai.LLM, error) {
	return newLLM(config)
}

// Invoke sends a single prompt to the model and returns the generated text.
func (l *LLM) Invoke(ctx context.Context, prompt string) (string, error) {
	l.logger.Debug("invoking llm", "promptLength", len(prompt))

	content, err := llms.GenerateFromSinglePrompt(ctx, l.client, prompt,
		llms.WithTemperature(l.temperature),
		llms.WithMaxTokens(l.maxTokens),
	)
	if err != nil {
		l.logger.Error("llm invocation failed", "err", err)
		return "", fmt.Errorf("invoke: %w: %v", core.ErrGeneration, err)
	}

	return content, nil
}
