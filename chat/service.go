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


package chat

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/storage"
	"github.com/panjf2000/ants/v2"
)

// DefaultHistoryLimit is how many turns History returns when the caller does
// not specify a limit.
const DefaultHistoryLimit = 50

// Service handles conversations: forwarding messages to the LLM and keeping
// the per-user chat log.
type Service struct {
	chatLog     storage.ChatLogRepository
	llm         ai.LLM
	persistPool *ants.Pool
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithPoolSize sets the worker pool size for asynchronous persistence.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}

		if s.persistPool != nil {
			s.persistPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.persistPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a new chat service.
func NewService(
	chatLog storage.ChatLogRepository,
	provider ai.Provider,
	opts ...Option,
) (*Service, error) {
	if chatLog == nil {
		return nil, ErrChatLogRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		chatLog:     chatLog,
		llm:         provider.LLM(),
		persistPool: pool,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Send forwards a message to the LLM and returns the reply. The completed
// turn is persisted asynchronously; persistence errors are logged, never
// surfaced to the caller.
func (s *Service) Send(ctx context.Context, userID, sessionID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", core.ErrEmptyUserID
	}
	if strings.TrimSpace(message) == "" {
		return "", core.ErrEmptyMessage
	}

	reply, err := s.llm.Invoke(ctx, message)
	if err != nil {
		return "", err
	}

	turn := &core.ChatTurn{
		UserID:      userID,
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: reply,
		Timestamp:   time.Now().UTC(),
	}

	if submitErr := s.persistPool.Submit(func() {
		if _, err := s.chatLog.AppendTurns(context.Background(), turn); err != nil {
			s.logger.Error("error persisting chat turn", "userID", userID, "err", err)
		}
	}); submitErr != nil {
		s.logger.Error("error submitting chat turn for persistence", "userID", userID, "err", submitErr)
	}

	return reply, nil
}

// History returns the user's most recent turns, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*core.ChatTurn, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrEmptyUserID
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.chatLog.GetRecentTurns(ctx, userID, limit)
}

// Sessions returns the user's distinct session IDs.
func (s *Service) Sessions(ctx context.Context, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrEmptyUserID
	}
	return s.chatLog.GetSessions(ctx, userID)
}

// Release releases the persistence worker pool.
// The service should not be used after calling Release.
func (s *Service) Release() {
	if s.persistPool != nil {
		s.persistPool.Release()
	}
}
