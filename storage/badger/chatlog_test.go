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


package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/storage"
)

func newTestChatLog(t *testing.T) storage.ChatLogRepository {
	t.Helper()
	chatLog, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chatLog.Close()
		backend.Close()
	})
	return chatLog
}

func turn(userID, sessionID, message, response string) *core.ChatTurn {
	return &core.ChatTurn{
		UserID:      userID,
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: response,
		Timestamp:   time.Now().UTC(),
	}
}

func TestChatLogRepository_AppendTurns(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns ids and inserted timestamps", func(t *testing.T) {
		repo := newTestChatLog(t)

		turns, err := repo.AppendTurns(ctx,
			turn("alice", "s1", "hi", "hello"),
			turn("alice", "s1", "how are you", "fine"),
		)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.NotZero(t, turns[0].Id)
		assert.NotZero(t, turns[1].Id)
		assert.NotEqual(t, turns[0].Id, turns[1].Id)
		assert.False(t, turns[0].InsertedAt.IsZero())
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		repo := newTestChatLog(t)

		_, err := repo.AppendTurns(ctx, turn("", "s1", "hi", "hello"))
		assert.ErrorIs(t, err, storage.ErrInvalidUserID)
	})

	t.Run("rejects user id containing the key delimiter", func(t *testing.T) {
		repo := newTestChatLog(t)

		_, err := repo.AppendTurns(ctx, turn("al:ice", "s1", "hi", "hello"))
		assert.ErrorIs(t, err, storage.ErrInvalidUserID)
	})

	t.Run("defaults zero timestamp to insertion time", func(t *testing.T) {
		repo := newTestChatLog(t)

		tn := &core.ChatTurn{UserID: "alice", UserMessage: "hi"}
		turns, err := repo.AppendTurns(ctx, tn)
		require.NoError(t, err)
		assert.Equal(t, turns[0].InsertedAt, turns[0].Timestamp)
	})
}

func TestChatLogRepository_GetRecentTurns(t *testing.T) {
	ctx := context.Background()

	t.Run("returns turns oldest first", func(t *testing.T) {
		repo := newTestChatLog(t)

		for i := 0; i < 5; i++ {
			_, err := repo.AppendTurns(ctx, turn("alice", "s1", fmt.Sprintf("msg-%d", i), "ok"))
			require.NoError(t, err)
		}

		turns, err := repo.GetRecentTurns(ctx, "alice", 3)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "msg-2", turns[0].UserMessage)
		assert.Equal(t, "msg-3", turns[1].UserMessage)
		assert.Equal(t, "msg-4", turns[2].UserMessage)
	})

	t.Run("non-positive limit returns everything", func(t *testing.T) {
		repo := newTestChatLog(t)

		for i := 0; i < 4; i++ {
			_, err := repo.AppendTurns(ctx, turn("alice", "s1", fmt.Sprintf("msg-%d", i), "ok"))
			require.NoError(t, err)
		}

		turns, err := repo.GetRecentTurns(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Len(t, turns, 4)
	})

	t.Run("users only see their own turns", func(t *testing.T) {
		repo := newTestChatLog(t)

		_, err := repo.AppendTurns(ctx,
			turn("alice", "s1", "alice message", "ok"),
			turn("bob", "s1", "bob message", "ok"),
		)
		require.NoError(t, err)

		aliceTurns, err := repo.GetRecentTurns(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, aliceTurns, 1)
		assert.Equal(t, "alice message", aliceTurns[0].UserMessage)

		bobTurns, err := repo.GetRecentTurns(ctx, "bob", 10)
		require.NoError(t, err)
		require.Len(t, bobTurns, 1)
		assert.Equal(t, "bob message", bobTurns[0].UserMessage)
	})

	t.Run("unknown user returns empty", func(t *testing.T) {
		repo := newTestChatLog(t)

		turns, err := repo.GetRecentTurns(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("round trips full turn contents", func(t *testing.T) {
		repo := newTestChatLog(t)

		original := turn("alice", "s9", "what is chatflow?", "a backend")
		_, err := repo.AppendTurns(ctx, original)
		require.NoError(t, err)

		turns, err := repo.GetRecentTurns(ctx, "alice", 1)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, original.Id, turns[0].Id)
		assert.Equal(t, "s9", turns[0].SessionID)
		assert.Equal(t, "what is chatflow?", turns[0].UserMessage)
		assert.Equal(t, "a backend", turns[0].BotResponse)
	})
}

func TestChatLogRepository_GetSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("distinct sessions sorted ascending", func(t *testing.T) {
		repo := newTestChatLog(t)

		_, err := repo.AppendTurns(ctx,
			turn("alice", "s2", "a", "ok"),
			turn("alice", "s1", "b", "ok"),
			turn("alice", "s2", "c", "ok"),
			turn("bob", "s3", "d", "ok"),
		)
		require.NoError(t, err)

		sessions, err := repo.GetSessions(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "s2"}, sessions)
	})

	t.Run("turns without a session are not indexed", func(t *testing.T) {
		repo := newTestChatLog(t)

		_, err := repo.AppendTurns(ctx, turn("alice", "", "a", "ok"))
		require.NoError(t, err)

		sessions, err := repo.GetSessions(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("unknown user returns empty", func(t *testing.T) {
		repo := newTestChatLog(t)

		sessions, err := repo.GetSessions(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}
