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


package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/index"
)

// Named vector fields inside each collection. One dense field with cosine
// distance, one sparse field kept off mmap.
const (
	denseField  = "dense_vectors"
	sparseField = "sparse_vectors"
)

const defaultTimeout = 30 * time.Second

// Client implements index.Index against the Qdrant REST API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ index.Index = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Qdrant REST client for the given base URL
// (e.g. "http://localhost:6333").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "qdrant"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureCollection creates the collection if it does not exist. Safe under
// concurrent callers racing to create the same collection: a duplicate-
// creation conflict from the backend is treated as success.
func (c *Client) EnsureCollection(ctx context.Context, name string, denseDim int) error {
	if name == "" {
		return index.ErrCollectionRequired
	}

	exists, err := c.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			denseField: map[string]any{
				"size":     denseDim,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseField: map[string]any{
				"index": map[string]any{"on_disk": false},
			},
		},
	}

	status, respBody, err := c.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return err
	}
	// Another caller may have created the collection between the existence
	// check and the create. Qdrant answers 409 for that; benign.
	if status == http.StatusConflict {
		c.logger.Debug("collection already created concurrently", "collection", name)
		return nil
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: %w: create collection %q returned %d: %s",
			core.ErrBackendProtocol, name, status, truncate(respBody, 200))
	}

	c.logger.Info("created collection", "collection", name, "denseDim", denseDim)
	return nil
}

// Upsert writes records in one call.
func (c *Client) Upsert(ctx context.Context, collection string, records []core.VectorRecord) error {
	if collection == "" {
		return index.ErrCollectionRequired
	}
	if len(records) == 0 {
		return fmt.Errorf("qdrant: %w: no records to upsert", core.ErrEmptyInput)
	}

	points := make([]map[string]any, len(records))
	for i, record := range records {
		points[i] = map[string]any{
			"id": record.ID,
			"vector": map[string]any{
				denseField: record.Dense,
				sparseField: map[string]any{
					"indices": record.Sparse.Indices,
					"values":  record.Sparse.Values,
				},
			},
			"payload": map[string]any{
				"text":     record.Payload.Text,
				"metadata": record.Payload.Metadata,
			},
		}
	}

	status, respBody, err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true",
		map[string]any{"points": points})
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: %w: upsert returned %d: %s",
			core.ErrBackendProtocol, status, truncate(respBody, 200))
	}

	c.logger.Debug("upserted points", "collection", collection, "count", len(points))
	return nil
}

// Query runs the dense and the sparse sub-queries independently, each
// pre-filtered by owner and capped to q.Limit, then fuses the two ranked
// lists with Reciprocal Rank Fusion.
func (c *Client) Query(ctx context.Context, collection string, q index.Query) ([]core.RetrievalResult, error) {
	if collection == "" {
		return nil, index.ErrCollectionRequired
	}
	if q.OwnerID == "" {
		return nil, index.ErrOwnerRequired
	}

	ownerFilter := map[string]any{
		"must": []map[string]any{
			{
				"key":   "metadata.owner_id",
				"match": map[string]any{"value": q.OwnerID},
			},
		},
	}

	densePoints, err := c.subQuery(ctx, collection, q.Dense, denseField, ownerFilter, q.Limit, q.ScoreThreshold)
	if err != nil {
		return nil, err
	}

	sparseQuery := map[string]any{
		"indices": q.Sparse.Indices,
		"values":  q.Sparse.Values,
	}
	sparsePoints, err := c.subQuery(ctx, collection, sparseQuery, sparseField, ownerFilter, q.Limit, q.ScoreThreshold)
	if err != nil {
		return nil, err
	}

	return index.FuseRRF([][]index.ScoredPoint{densePoints, sparsePoints}, index.RRFRankConstant, q.Limit), nil
}

// queryResponse is the wire format of POST /collections/{c}/points/query.
type queryResponse struct {
	Result struct {
		Points []struct {
			ID      any     `json:"id"`
			Score   float32 `json:"score"`
			Payload struct {
				Text     string            `json:"text"`
				Metadata map[string]string `json:"metadata"`
			} `json:"payload"`
		} `json:"points"`
	} `json:"result"`
}

func (c *Client) subQuery(ctx context.Context, collection string, query any, using string, filter map[string]any, limit int, threshold float32) ([]index.ScoredPoint, error) {
	body := map[string]any{
		"query":        query,
		"using":        using,
		"filter":       filter,
		"limit":        limit,
		"with_payload": true,
	}
	if threshold > 0 {
		body["score_threshold"] = threshold
	}

	status, respBody, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/query", body)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant: %w: query (%s) returned %d: %s",
			core.ErrBackendProtocol, using, status, truncate(respBody, 200))
	}

	var wire queryResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("qdrant: %w: decode query response: %v", core.ErrBackendProtocol, err)
	}

	points := make([]index.ScoredPoint, len(wire.Result.Points))
	for i, p := range wire.Result.Points {
		points[i] = index.ScoredPoint{
			ID:    fmt.Sprint(p.ID),
			Score: p.Score,
			Payload: core.Payload{
				Text:     p.Payload.Text,
				Metadata: p.Payload.Metadata,
			},
		}
	}
	return points, nil
}

// collectionExists checks for the collection via GET /collections/{name}.
func (c *Client) collectionExists(ctx context.Context, name string) (bool, error) {
	status, respBody, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	switch {
	case status == http.StatusOK:
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("qdrant: %w: collection check returned %d: %s",
			core.ErrBackendProtocol, status, truncate(respBody, 200))
	}
}

// do issues one request and reads the whole response body. Network failures
// are classified as transport errors.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: %w: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: %w: read response: %v", core.ErrTransport, err)
	}

	return resp.StatusCode, respBody, nil
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
