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


// Package searx implements websearch.SearchProvider against a SearxNG
// instance's JSON API.
package searx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/websearch"
)

// DefaultTimeout bounds one search round trip.
const DefaultTimeout = 30 * time.Second

// ErrBaseURLRequired is returned when the client is built without a base URL.
var ErrBaseURLRequired = errors.New("searx base URL is required")

// Client queries a SearxNG instance over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient != nil {
			c.httpClient = httpClient
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a search provider backed by the SearxNG instance at
// baseURL.
func NewClient(baseURL string, opts ...Option) (websearch.SearchProvider, error) {
	return newClient(baseURL, opts...)
}

func newClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrBaseURLRequired
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search runs one SearxNG query and returns at most maxResults hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]core.WebResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: searx request: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read searx response: %v", core.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: searx returned status %d", core.ErrBackendProtocol, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode searx response: %v", core.ErrBackendProtocol, err)
	}

	results := make([]core.WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, core.WebResult{
			Title:   r.Title,
			Snippet: r.Content,
			Link:    r.URL,
		})
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
	}

	c.logger.Debug("searx search complete", "query", query, "results", len(results))
	return results, nil
}
