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
	"encoding/binary"
	"fmt"

	"github.com/chatflow/chatflow/core"
)

// Key prefixes for different data types
const (
	chatTurnPrefix    = "chaturn"
	chatSessionPrefix = "chasess"
	chatTurnIDSeq     = "chaturnseq"
	userRecordPrefix  = "usrrec"
)

// makeChatTurnKey generates a composite key for a chat turn.
// Format: prefix:userID:seq. Sequence IDs are monotonic, so lexicographic
// key order within one user's prefix is insertion order.
func makeChatTurnKey(userID string, id core.ID) []byte {
	prefix := chatTurnPrefix + ":" + userID + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChatTurnUserPrefix generates the key prefix covering all of one user's
// chat turns.
func makeChatTurnUserPrefix(userID string) []byte {
	return []byte(chatTurnPrefix + ":" + userID + ":")
}

// makeSessionKey generates a key for the session index.
// Format: prefix:userID:sessionID
func makeSessionKey(userID, sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", chatSessionPrefix, userID, sessionID))
}

// makeSessionUserPrefix generates the key prefix covering one user's
// session index entries.
func makeSessionUserPrefix(userID string) []byte {
	return []byte(chatSessionPrefix + ":" + userID + ":")
}

// makeUserKey generates a key for a user record by username.
func makeUserKey(username string) []byte {
	return []byte(fmt.Sprintf("%s:%s", userRecordPrefix, username))
}
