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
	"slices"
	"strings"
	"time"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/storage"
	"github.com/dgraph-io/badger/v4"
)

// ChatLogRepository implements storage.ChatLogRepository for BadgerDB.
type ChatLogRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatLogRepository = (*ChatLogRepository)(nil)

// NewChatLogRepository creates a new chat log repository on the backend.
func NewChatLogRepository(backend *Backend) (storage.ChatLogRepository, error) {
	idSeq, err := backend.GetSequence(chatTurnIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatLogRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatLogRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChatLogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendTurns appends turns to their users' chat logs.
func (r *ChatLogRepository) AppendTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error) {
	for _, turn := range turns {
		// User IDs are key components, so the delimiter is reserved.
		if turn.UserID == "" || strings.Contains(turn.UserID, ":") {
			return nil, storage.ErrInvalidUserID
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			turn.Id = core.ID(nextID)
			turn.InsertedAt = time.Now().UTC()
			if turn.Timestamp.IsZero() {
				turn.Timestamp = turn.InsertedAt
			}

			// Store primary record
			key := makeChatTurnKey(turn.UserID, turn.Id)
			if err := tx.Set(key, storage.MarshalChatTurn(turn)); err != nil {
				return err
			}

			// Update session index
			if turn.SessionID != "" {
				sessionKey := makeSessionKey(turn.UserID, turn.SessionID)
				if err := tx.Set(sessionKey, storage.MarshalID(turn.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return turns, err
}

// GetRecentTurns retrieves the most recent turns for one user, oldest first.
func (r *ChatLogRepository) GetRecentTurns(ctx context.Context, userID string, limit int) ([]*core.ChatTurn, error) {
	var results []*core.ChatTurn

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeChatTurnUserPrefix(userID)

		// Walk the user's log backwards to find the newest turns first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key with this prefix.
		seekKey := append(slices.Clone(prefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

		for iter.Seek(seekKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var turn *core.ChatTurn
			err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalChatTurn(val)
				return err
			})
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Reverse to oldest-first order.
	slices.Reverse(results)
	return results, nil
}

// GetSessions returns the distinct session IDs of one user's turns.
func (r *ChatLogRepository) GetSessions(ctx context.Context, userID string) ([]string, error) {
	sessions := []string{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSessionUserPrefix(userID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			sessions = append(sessions, string(key[len(prefix):]))
		}
		return nil
	}, false)

	return sessions, err
}
