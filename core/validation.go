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


package core

import (
	"fmt"
	"time"
)

// ValidateChatTurn validates a ChatTurn according to domain rules.
//
// Validation rules:
//   - UserID must not be empty (ownership is the multi-tenancy boundary)
//   - UserMessage must not be empty
//   - Timestamp must not be in the future
//
// NOT validated:
//   - BotResponse (may legitimately be empty when generation degrades)
//   - ID (0 is valid from database sequences)
func ValidateChatTurn(turn *ChatTurn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidChatTurn)
	}

	if turn.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrEmptyUserID)
	}

	if turn.UserMessage == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrEmptyMessage)
	}

	if !IsValidTimestamp(turn.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
