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
	"strings"
	"time"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/storage"
	"github.com/dgraph-io/badger/v4"
)

// UserRepository implements storage.UserRepository for BadgerDB.
type UserRepository struct {
	backend *Backend
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository on the backend.
func NewUserRepository(backend *Backend) storage.UserRepository {
	return &UserRepository{backend: backend}
}

// CreateUser stores a new user record. Usernames may not contain ":",
// which delimits the per-user key prefixes in the chat log.
func (r *UserRepository) CreateUser(ctx context.Context, user *core.User) error {
	if user.Username == "" || strings.ContainsRune(user.Username, ':') {
		return storage.ErrInvalidUserID
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUserKey(user.Username)

		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrDuplicateKey
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(key, storage.MarshalUser(user)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetUser retrieves a user by username.
func (r *UserRepository) GetUser(ctx context.Context, username string) (*core.User, error) {
	var user *core.User

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUserKey(username))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			user, unmarshalErr = storage.UnmarshalUser(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return user, nil
}
