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


package auth

import "errors"

var (
	// ErrUsersRequired is returned when no user repository is supplied.
	ErrUsersRequired = errors.New("user repository is required")
	// ErrSecretRequired is returned when no signing secret is supplied.
	ErrSecretRequired = errors.New("signing secret is required")
	// ErrInvalidCredentials is returned on a bad username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's lifetime has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrWeakPassword is returned when a new password is too short.
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidUsername is returned when a new username contains a
	// character the chat log key scheme reserves.
	ErrInvalidUsername = errors.New("username contains reserved characters")
)
