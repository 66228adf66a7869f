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


package hybrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
)

// Client implements ai.Embedder against a hybrid embedding server exposing
// POST {host}/hybrid-embed. One request per EmbedTexts call, no retries.
type Client struct {
	host   string
	client *http.Client
	logger *slog.Logger
}

var _ ai.Embedder = (*Client)(nil)

// embedRequest is the wire format of the /hybrid-embed request body.
type embedRequest struct {
	Texts []string `json:"texts"`
}

// embedResponse is the wire format of the /hybrid-embed response body.
// Both vector kinds must be present and parallel to the request batch.
type embedResponse struct {
	DenseVectors  [][]float32 `json:"dense_vectors"`
	SparseVectors []struct {
		Indices []uint32  `json:"indices"`
		Values  []float32 `json:"values"`
	} `json:"sparse_vectors"`
}

// newClient is an internal constructor that returns the concrete type.
func newClient(config *ai.Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		host: config.EmbeddingHost,
		client: &http.Client{
			Timeout: config.EmbedTimeout,
		},
		logger: slog.Default().With("component", "hybrid-embedder"),
	}, nil
}

// NewClient creates an embedding client using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewClient(config *ai.Config) (ai.Embedder, error) {
	return newClient(config)
}

// EmbedTexts generates dense and sparse embeddings for a batch of texts.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) (*ai.HybridVectors, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed: %w: no texts to embed", core.ErrEmptyInput)
	}

	c.logger.Debug("requesting hybrid embeddings", "count", len(texts))

	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/hybrid-embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("embedding request failed", "err", err)
		return nil, fmt.Errorf("embed: %w: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("embedding server returned error", "status", resp.Status)
		return nil, fmt.Errorf("embed: %w: server returned %s", core.ErrTransport, resp.Status)
	}

	var wire embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("embed: %w: decode response: %v", core.ErrBackendProtocol, err)
	}

	if len(wire.DenseVectors) == 0 || len(wire.SparseVectors) == 0 {
		return nil, fmt.Errorf("embed: %w: server did not return both dense_vectors and sparse_vectors", core.ErrBackendProtocol)
	}
	if len(wire.DenseVectors) != len(texts) || len(wire.SparseVectors) != len(texts) {
		return nil, fmt.Errorf("embed: %w: expected %d vectors of each kind, got %d dense and %d sparse",
			core.ErrBackendProtocol, len(texts), len(wire.DenseVectors), len(wire.SparseVectors))
	}

	vectors := &ai.HybridVectors{
		Dense:  wire.DenseVectors,
		Sparse: make([]core.SparseVector, len(wire.SparseVectors)),
	}
	for i, sv := range wire.SparseVectors {
		vectors.Sparse[i] = core.SparseVector{Indices: sv.Indices, Values: sv.Values}
	}

	return vectors, nil
}
