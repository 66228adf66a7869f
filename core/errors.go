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

import "errors"

// Failure taxonomy for outbound calls. Components wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	// ErrTransport indicates a network-level failure reaching an external
	// service (embedding server, vector index, search provider).
	ErrTransport = errors.New("transport failure")

	// ErrBackendProtocol indicates a malformed or incomplete response from
	// an external service.
	ErrBackendProtocol = errors.New("malformed backend response")

	// ErrEmptyInput indicates there was nothing to process.
	ErrEmptyInput = errors.New("empty input")

	// ErrGeneration indicates the LLM invocation failed.
	ErrGeneration = errors.New("generation failed")
)

// Domain validation errors
var (
	// ErrInvalidChatTurn indicates a ChatTurn failed validation.
	ErrInvalidChatTurn = errors.New("invalid chat turn")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyUserID indicates the UserID field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyMessage indicates the UserMessage field is empty.
	ErrEmptyMessage = errors.New("message cannot be empty")
)
