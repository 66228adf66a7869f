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


// Package ai provides abstractions for the AI services used in Chatflow.
//
// This package defines interfaces for the two outbound AI dependencies: the
// hybrid embedding service (dense + sparse vectors) and the LLM oracle used
// for chat completion, answer synthesis, and query optimization. Business
// logic depends on these abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: converts text batches to dense and sparse vectors
//   - LLM: a single synchronous invoke(prompt) -> text oracle
//   - Provider: aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: LLM oracle via OpenAI-compatible chat APIs (vLLM, Ollama)
//   - ai/hybrid: embedding client for the /hybrid-embed REST endpoint
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors return interface types to enforce abstraction; mock
// constructors return concrete types to enable behavior injection and test
// assertions.
package ai
