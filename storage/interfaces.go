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


package storage

import (
	"context"

	"github.com/chatflow/chatflow/core"
)

// ChatLogRepository provides operations for the per-user chat log.
// Implementations must be thread-safe and support concurrent access.
type ChatLogRepository interface {
	// AppendTurns appends one or more turns to their users' chat logs.
	// Generates sequence IDs and sets InsertedAt on each turn.
	// Returns the turns with IDs and timestamps populated.
	AppendTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error)

	// GetRecentTurns retrieves the most recent turns for one user,
	// oldest first. Returns up to limit turns; a non-positive limit
	// means no cap.
	GetRecentTurns(ctx context.Context, userID string, limit int) ([]*core.ChatTurn, error)

	// GetSessions returns the distinct session IDs of one user's turns,
	// sorted ascending.
	GetSessions(ctx context.Context, userID string) ([]string, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the repository's resources.
	Close() error
}

// UserRepository provides operations for user account records.
type UserRepository interface {
	// CreateUser stores a new user record.
	// Returns ErrDuplicateKey if the username is taken.
	CreateUser(ctx context.Context, user *core.User) error

	// GetUser retrieves a user by username.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, username string) (*core.User, error)
}
