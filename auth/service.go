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

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/storage"
	"github.com/go-crypt/x/bcrypt"
)

const (
	// DefaultTokenTTL is the bearer token lifetime.
	DefaultTokenTTL = 30 * time.Minute
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// Service manages user accounts and issues bearer tokens.
type Service struct {
	users    storage.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service) error

// WithTokenTTL sets the token lifetime.
// Default is DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
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

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.now = now
		return nil
	}
}

// NewService creates a new auth service signing tokens with secret.
func NewService(users storage.UserRepository, secret string, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, ErrUsersRequired
	}
	if secret == "" {
		return nil, ErrSecretRequired
	}

	s := &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: DefaultTokenTTL,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// CreateUser provisions a new account with a bcrypt-hashed password.
// Usernames may not contain ":", which the chat log reserves as its
// key prefix delimiter.
func (s *Service) CreateUser(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return core.ErrEmptyUserID
	}
	if strings.ContainsRune(username, ':') {
		return ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateUser(ctx, &core.User{
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Login checks the credentials and returns a signed bearer token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	expiry := s.now().Add(s.tokenTTL)
	return s.sign(username, expiry), nil
}

// Verify checks a token's signature and expiry and returns its username.
func (s *Service) Verify(token string) (string, error) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return "", ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return "", ErrInvalidToken
	}

	if !hmac.Equal(sig, s.mac(payload)) {
		return "", ErrInvalidToken
	}

	// Split on the last colon; usernames may not contain one but the
	// expiry never does, so this is unambiguous for signed payloads.
	idx := strings.LastIndexByte(string(payload), ':')
	if idx < 0 {
		return "", ErrInvalidToken
	}
	username := string(payload[:idx])
	expiryUnix, err := strconv.ParseInt(string(payload[idx+1:]), 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}

	if s.now().After(time.Unix(expiryUnix, 0)) {
		return "", ErrTokenExpired
	}

	return username, nil
}

func (s *Service) sign(username string, expiry time.Time) string {
	payload := []byte(fmt.Sprintf("%s:%d", username, expiry.Unix()))
	return base64.RawURLEncoding.EncodeToString(payload) +
		"." + base64.RawURLEncoding.EncodeToString(s.mac(payload))
}

func (s *Service) mac(payload []byte) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write(payload)
	return m.Sum(nil)
}
