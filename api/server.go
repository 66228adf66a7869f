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


package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chatflow/chatflow/auth"
	"github.com/chatflow/chatflow/chat"
	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/ingestion"
	"github.com/chatflow/chatflow/rag"
	"github.com/chatflow/chatflow/websearch"
)

var (
	// ErrAuthRequired is returned when no auth service is supplied.
	ErrAuthRequired = errors.New("auth service is required")
	// ErrChatRequired is returned when no chat service is supplied.
	ErrChatRequired = errors.New("chat service is required")
	// ErrIngestorRequired is returned when no ingestion pipeline is supplied.
	ErrIngestorRequired = errors.New("ingestion pipeline is required")
	// ErrAnswererRequired is returned when no answerer is supplied.
	ErrAnswererRequired = errors.New("answerer is required")
	// ErrSearcherRequired is returned when no web search pipeline is supplied.
	ErrSearcherRequired = errors.New("web search pipeline is required")
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	auth     *auth.Service
	chat     *chat.Service
	ingestor *ingestion.Pipeline
	answerer *rag.Answerer
	searcher *websearch.Pipeline
	logger   *slog.Logger

	// defaultCollection is used by RAG endpoints when the request body
	// does not name one.
	defaultCollection string
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDefaultCollection sets the collection used when RAG requests omit one.
// Default is "documents".
func WithDefaultCollection(name string) Option {
	return func(s *Server) error {
		if name != "" {
			s.defaultCollection = name
		}
		return nil
	}
}

// NewServer creates the HTTP server facade.
func NewServer(
	authSvc *auth.Service,
	chatSvc *chat.Service,
	ingestor *ingestion.Pipeline,
	answerer *rag.Answerer,
	searcher *websearch.Pipeline,
	opts ...Option,
) (*Server, error) {
	if authSvc == nil {
		return nil, ErrAuthRequired
	}
	if chatSvc == nil {
		return nil, ErrChatRequired
	}
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		auth:              authSvc,
		chat:              chatSvc,
		ingestor:          ingestor,
		answerer:          answerer,
		searcher:          searcher,
		logger:            slog.Default(),
		defaultCollection: "documents",
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Router builds the full handler tree with auth and CORS middleware applied.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/chat", s.requireAuth(s.handleChat))
	mux.HandleFunc("/history", s.requireAuth(s.handleHistory))
	mux.HandleFunc("/sessions", s.requireAuth(s.handleSessions))
	mux.HandleFunc("/rag/ingest", s.requireAuth(s.handleIngest))
	mux.HandleFunc("/rag/query", s.requireAuth(s.handleQuery))
	mux.HandleFunc("/websearch", s.requireAuth(s.handleWebSearch))
	return cors(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"time_utc": time.Now().UTC().Format(time.RFC3339),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "username", req.Username, "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFrom(r.Context())
	reply, err := s.chat.Send(r.Context(), username, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		s.logger.Error("chat failed", "username", username, "err", err)
		writeError(w, http.StatusBadGateway, "chat backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	username := usernameFrom(r.Context())
	turns, err := s.chat.History(r.Context(), username, limit)
	if err != nil {
		s.logger.Error("history failed", "username", username, "err", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	username := usernameFrom(r.Context())
	sessions, err := s.chat.Sessions(r.Context(), username)
	if err != nil {
		s.logger.Error("sessions failed", "username", username, "err", err)
		writeError(w, http.StatusInternalServerError, "sessions unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

type ingestRequest struct {
	Paths      []string `json:"paths"`
	Collection string   `json:"collection"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = s.defaultCollection
	}

	username := usernameFrom(r.Context())
	result, err := s.ingestor.Ingest(r.Context(), req.Paths, collection, username, nil)
	if err != nil {
		s.logger.Error("ingest failed", "username", username, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type queryRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	Limit      int    `json:"limit"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = s.defaultCollection
	}

	username := usernameFrom(r.Context())
	answer := s.answerer.Answer(r.Context(), req.Query, collection, username, req.Limit)
	writeJSON(w, http.StatusOK, answer)
}

type webSearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	TopK       int    `json:"top_k"`
}

type webSearchResponse struct {
	Result string `json:"result"`
}

func (s *Server) handleWebSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req webSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.searcher.SearchAndSummarize(r.Context(), req.Query, req.MaxResults, req.TopK)
	if err != nil {
		// Search provider failures are reported in-band so chat clients
		// can show them as a normal reply.
		s.logger.Warn("web search failed", "err", err)
		writeJSON(w, http.StatusOK, webSearchResponse{
			Result: "Web search failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, webSearchResponse{Result: result})
}
