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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// LLMHost is the base URL for the OpenAI-compatible chat API.
	// Example: "http://localhost:8000/v1" for a local vLLM server
	LLMHost string

	// LLMModel is the model identifier for text generation.
	// Example: "gemma-3-27b-it", "gpt-4o-mini"
	LLMModel string

	// EmbeddingHost is the base URL for the hybrid embedding service.
	// The service must expose POST {EmbeddingHost}/hybrid-embed.
	EmbeddingHost string

	// EmbedTimeout caps a single embedding call. Ingestion batches can be
	// large, so the default is generous.
	// Default: 2 minutes
	EmbedTimeout time.Duration

	// Temperature controls generation randomness.
	// Default: 0.7
	Temperature float64

	// MaxTokens caps the length of generated responses.
	// Default: 2000
	MaxTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithLLMHost sets the chat API host URL.
func WithLLMHost(host string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
	}
}

// WithLLMModel sets the generation model identifier.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// WithEmbeddingHost sets the hybrid embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbedTimeout sets the per-call timeout for embedding requests.
func WithEmbedTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.EmbedTimeout = timeout
	}
}

// WithTemperature sets the generation temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithMaxTokens sets the generation token cap.
func WithMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		LLMHost:       "http://localhost:8000/v1",
		LLMModel:      "gemma-3-27b-it",
		EmbeddingHost: "http://localhost:9000",
		EmbedTimeout:  2 * time.Minute,
		Temperature:   0.7,
		MaxTokens:     2000,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. The LLM host
// gets the /v1 suffix required by OpenAI-compatible APIs; the embedding host
// loses any trailing slash so path joining stays predictable.
func (c *Config) Normalize() {
	if c.LLMHost != "" && !strings.HasSuffix(c.LLMHost, "/v1") {
		c.LLMHost = strings.TrimSuffix(c.LLMHost, "/")
		c.LLMHost = c.LLMHost + "/v1"
	}
	c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.LLMHost == "" {
		return errors.New("ai config: LLMHost is required")
	}
	if c.LLMModel == "" {
		return errors.New("ai config: LLMModel is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbedTimeout <= 0 {
		return errors.New("ai config: EmbedTimeout must be positive")
	}
	return nil
}
