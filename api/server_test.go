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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/chatflow/chatflow/ai/mock"
	"github.com/chatflow/chatflow/auth"
	"github.com/chatflow/chatflow/chat"
	"github.com/chatflow/chatflow/core"
	indexmock "github.com/chatflow/chatflow/index/mock"
	"github.com/chatflow/chatflow/ingestion"
	"github.com/chatflow/chatflow/rag"
	badgerstore "github.com/chatflow/chatflow/storage/badger"
	"github.com/chatflow/chatflow/websearch"
	searchmock "github.com/chatflow/chatflow/websearch/mock"
)

type testEnv struct {
	server   *httptest.Server
	auth     *auth.Service
	provider *aimock.MockProvider
	index    *indexmock.MockIndex
	search   *searchmock.MockProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	chatLog, users, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chatLog.Close()
		backend.Close()
	})

	provider := aimock.NewMockProvider()
	idx := indexmock.NewMockIndex()
	searchProvider := searchmock.NewMockProvider()

	authSvc, err := auth.NewService(users, "test-secret")
	require.NoError(t, err)

	chatSvc, err := chat.NewService(chatLog, provider)
	require.NoError(t, err)
	t.Cleanup(chatSvc.Release)

	ingestor, err := ingestion.NewPipeline(idx, provider.Embedder())
	require.NoError(t, err)

	answerer, err := rag.NewAnswerer(idx, provider)
	require.NoError(t, err)

	searcher, err := websearch.NewPipeline(searchProvider, provider)
	require.NoError(t, err)

	srv, err := NewServer(authSvc, chatSvc, ingestor, answerer, searcher)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{
		server:   ts,
		auth:     authSvc,
		provider: provider,
		index:    idx,
		search:   searchProvider,
	}
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	require.NoError(t, e.auth.CreateUser(context.Background(), username, password))

	resp := e.post(t, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (e *testEnv) post(t *testing.T, path, token string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/health", "")
	var body map[string]any
	decodeBody(t, resp, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, "alice", "correct horse battery")
		assert.NotEmpty(t, token)
	})

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.auth.CreateUser(context.Background(), "alice", "correct horse battery"))

		resp := env.post(t, "/login", "", map[string]string{
			"username": "alice",
			"password": "wrong password!!",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		resp := env.post(t, "/chat", "", map[string]string{"message": "hi"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := env.post(t, "/chat", "not-a-token", map[string]string{"message": "hi"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health and login stay open", func(t *testing.T) {
		resp := env.get(t, "/health", "")
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestChatEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.provider.GetMockLLM().InvokeFunc = func(ctx context.Context, prompt string) (string, error) {
		return "reply to: " + prompt, nil
	}
	token := env.login(t, "alice", "correct horse battery")

	t.Run("chat returns the LLM reply", func(t *testing.T) {
		resp := env.post(t, "/chat", token, map[string]string{
			"session_id": "s1",
			"message":    "hello",
		})
		var body map[string]string
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "reply to: hello", body["response"])
	})

	t.Run("empty message is a bad request", func(t *testing.T) {
		resp := env.post(t, "/chat", token, map[string]string{"message": ""})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("history and sessions are scoped to the token's user", func(t *testing.T) {
		// Persisting is async; poll until the turn shows up.
		assert.Eventually(t, func() bool {
			resp := env.get(t, "/history", token)
			var body struct {
				Turns []core.ChatTurn `json:"turns"`
			}
			decodeBody(t, resp, &body)
			return len(body.Turns) >= 1
		}, 2*time.Second, 10*time.Millisecond)

		otherToken := env.login(t, "bob", "another password!")
		resp := env.get(t, "/history", otherToken)
		var body struct {
			Turns []core.ChatTurn `json:"turns"`
		}
		decodeBody(t, resp, &body)
		assert.Empty(t, body.Turns)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := env.get(t, "/history?limit=nope", token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIngestAndQueryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice", "correct horse battery")

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("chatflow is a conversational backend"), 0644))

	t.Run("ingest indexes the file under the token's user", func(t *testing.T) {
		resp := env.post(t, "/rag/ingest", token, map[string]any{
			"paths":      []string{path},
			"collection": "docs",
		})
		var body struct {
			Collection     string `json:"collection"`
			OwnerID        string `json:"owner_id"`
			ChunksIndexed  int    `json:"chunks_indexed"`
			PointsUpserted int    `json:"points_upserted"`
		}
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "docs", body.Collection)
		assert.Equal(t, "alice", body.OwnerID)
		assert.Equal(t, 1, body.ChunksIndexed)

		records := env.index.Records("docs")
		require.Len(t, records, 1)
		assert.Equal(t, "alice", records[0].Payload.Metadata["owner_id"])
	})

	t.Run("query answers from the user's documents", func(t *testing.T) {
		resp := env.post(t, "/rag/query", token, map[string]any{
			"query":      "what is chatflow",
			"collection": "docs",
		})
		var body struct {
			Response      string                 `json:"response"`
			RetrievedDocs []core.RetrievalResult `json:"retrieved_docs"`
		}
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body.Response)
		require.NotEmpty(t, body.RetrievedDocs)
		assert.Contains(t, body.RetrievedDocs[0].Text, "conversational backend")
	})

	t.Run("another user sees no documents", func(t *testing.T) {
		otherToken := env.login(t, "bob", "another password!")
		resp := env.post(t, "/rag/query", otherToken, map[string]any{
			"query":      "what is chatflow",
			"collection": "docs",
		})
		var body struct {
			Response      string                 `json:"response"`
			RetrievedDocs []core.RetrievalResult `json:"retrieved_docs"`
		}
		decodeBody(t, resp, &body)

		assert.Equal(t, rag.NoDocumentsMessage, body.Response)
		assert.Empty(t, body.RetrievedDocs)
	})

	t.Run("missing query", func(t *testing.T) {
		resp := env.post(t, "/rag/query", token, map[string]any{"collection": "docs"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ingest failure propagates", func(t *testing.T) {
		resp := env.post(t, "/rag/ingest", token, map[string]any{
			"paths": []string{filepath.Join(dir, "missing.txt")},
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestWebSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice", "correct horse battery")

	t.Run("successful search", func(t *testing.T) {
		env.search.Results = []core.WebResult{
			{Title: "Gemma 3 27B", Snippet: "release notes", Link: "https://gemma"},
		}

		resp := env.post(t, "/websearch", token, map[string]any{"query": "Gemma 3 27B"})
		var body map[string]string
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body["result"], "Gemma 3 27B")
		assert.Contains(t, body["result"], "https://gemma")
	})

	t.Run("provider failure becomes an in-band error string", func(t *testing.T) {
		env.search.SearchFunc = func(ctx context.Context, query string, maxResults int) ([]core.WebResult, error) {
			return nil, errors.New("searx unreachable")
		}
		defer func() { env.search.SearchFunc = nil }()

		resp := env.post(t, "/websearch", token, map[string]any{"query": "anything"})
		var body map[string]string
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body["result"], "Web search failed")
		assert.Contains(t, body["result"], "searx unreachable")
	})

	t.Run("missing query", func(t *testing.T) {
		resp := env.post(t, "/websearch", token, map[string]any{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/chat", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
