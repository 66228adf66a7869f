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


package chatflow

import (
	"log/slog"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/ai/openai"
	"github.com/chatflow/chatflow/auth"
	"github.com/chatflow/chatflow/chat"
	"github.com/chatflow/chatflow/index"
	"github.com/chatflow/chatflow/index/qdrant"
	"github.com/chatflow/chatflow/ingestion"
	"github.com/chatflow/chatflow/rag"
	"github.com/chatflow/chatflow/storage"
	"github.com/chatflow/chatflow/storage/badger"
	"github.com/chatflow/chatflow/websearch"
	"github.com/chatflow/chatflow/websearch/searx"
)

// App wires the storage backend, the AI provider, and the vector index, and
// hands out the services built on them.
type App struct {
	backend  *badger.Backend
	chatLog  storage.ChatLogRepository
	users    storage.UserRepository
	provider ai.Provider
	idx      index.Index
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig  *ai.Config
	qdrantURL string
	inMemory  bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) AppOption {
	return func(o *appOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithQdrantURL sets the vector index endpoint.
// Default is http://localhost:6333.
func WithQdrantURL(url string) AppOption {
	return func(o *appOptions) {
		if url != "" {
			o.qdrantURL = url
		}
	}
}

// WithInMemoryStorage keeps the chat log and user store in memory instead of
// on disk. Mainly for tests.
func WithInMemoryStorage() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// NewApp opens the storage backend at filePath and builds the shared
// collaborators.
func NewApp(filePath string, opts ...AppOption) (*App, error) {
	options := &appOptions{
		aiConfig:  ai.DefaultConfig(),
		qdrantURL: "http://localhost:6333",
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chatLog, err := badger.NewChatLogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	users := badger.NewUserRepository(backend)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		chatLog.Close()
		backend.Close()
		return nil, err
	}

	return &App{
		backend:  backend,
		chatLog:  chatLog,
		users:    users,
		provider: provider,
		idx:      qdrant.NewClient(options.qdrantURL),
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and the storage backend.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.chatLog.Close(); err != nil {
		a.logger.Error("error closing chat log repository", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChatLogRepository returns the chat log store.
func (a *App) ChatLogRepository() storage.ChatLogRepository {
	return a.chatLog
}

// UserRepository returns the user account store.
func (a *App) UserRepository() storage.UserRepository {
	return a.users
}

// Index returns the vector index adapter.
func (a *App) Index() index.Index {
	return a.idx
}

// Provider returns the AI provider.
func (a *App) Provider() ai.Provider {
	return a.provider
}

// NewChatService builds a chat service on the shared collaborators.
func (a *App) NewChatService(opts ...chat.Option) (*chat.Service, error) {
	return chat.NewService(a.chatLog, a.provider, opts...)
}

// NewAuthService builds an auth service signing tokens with secret.
func (a *App) NewAuthService(secret string, opts ...auth.Option) (*auth.Service, error) {
	return auth.NewService(a.users, secret, opts...)
}

// NewIngestionPipeline builds a document ingestion pipeline.
func (a *App) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.idx, a.provider.Embedder(), opts...)
}

// NewAnswerer builds a retrieval-augmented answerer.
func (a *App) NewAnswerer(opts ...rag.Option) (*rag.Answerer, error) {
	return rag.NewAnswerer(a.idx, a.provider, opts...)
}

// NewWebSearchPipeline builds a web search pipeline against a SearxNG
// instance.
func (a *App) NewWebSearchPipeline(searxURL string, opts ...websearch.Option) (*websearch.Pipeline, error) {
	searchProvider, err := searx.NewClient(searxURL)
	if err != nil {
		return nil, err
	}
	return websearch.NewPipeline(searchProvider, a.provider, opts...)
}
