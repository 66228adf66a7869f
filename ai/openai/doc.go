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


// Package openai provides the production ai.Provider implementation.
//
// Text generation goes through the langchaingo OpenAI client against any
// OpenAI-compatible endpoint (vLLM, Ollama, LocalAI); hybrid embeddings are
// delegated to the ai/hybrid client.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithLLMHost("http://localhost:8000"),  // /v1 added automatically
//	    ai.WithLLMModel("gemma-3-27b-it"),
//	    ai.WithEmbeddingHost("http://localhost:9000"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.LLM().Invoke(ctx, "prompt")
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"sample text"})
package openai
