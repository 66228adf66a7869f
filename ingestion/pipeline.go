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


package ingestion

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/index"
)

// Default chunking and embedding parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultDenseDim     = 1024
)

// Pipeline orchestrates document ingestion into the vector index.
type Pipeline struct {
	idx      index.Index
	embedder ai.Embedder
	loader   *Loader
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithLoader sets a custom document loader.
func WithLoader(loader *Loader) Option {
	return func(p *Pipeline) error {
		if loader != nil {
			p.loader = loader
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(idx index.Index, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		idx:      idx,
		embedder: embedder,
		loader:   NewLoader(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion. Zero values fall
// back to the package defaults.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
	DenseDim     int
}

func (o *IngestOptions) withDefaults() IngestOptions {
	opts := IngestOptions{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		DenseDim:     DefaultDenseDim,
	}
	if o == nil {
		return opts
	}
	if o.ChunkSize > 0 {
		opts.ChunkSize = o.ChunkSize
	}
	if o.ChunkOverlap >= 0 && o.ChunkOverlap < opts.ChunkSize {
		opts.ChunkOverlap = o.ChunkOverlap
	}
	if o.DenseDim > 0 {
		opts.DenseDim = o.DenseDim
	}
	return opts
}

// Result summarizes one ingestion call.
type Result struct {
	Collection     string `json:"collection"`
	OwnerID        string `json:"owner_id"`
	ChunksIndexed  int    `json:"chunks_indexed"`
	PointsUpserted int    `json:"points_upserted"`
}

// Ingest loads the source paths, chunks them, embeds all chunks in one
// batch, and upserts one record per chunk tagged with ownerID. Empty input
// returns a zero-count result without touching the index. Each record gets a
// freshly generated UUID, so re-ingesting the same sources duplicates
// records instead of overwriting them; that is a documented limitation of
// the ID scheme.
func (p *Pipeline) Ingest(ctx context.Context, paths []string, collection, ownerID string, opts *IngestOptions) (*Result, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if collection == "" {
		return nil, index.ErrCollectionRequired
	}
	options := opts.withDefaults()

	documents, err := p.loader.Load(ctx, paths)
	if err != nil {
		return nil, err
	}

	// No documents: report zero work without creating the collection.
	if len(documents) == 0 {
		return &Result{Collection: collection, OwnerID: ownerID}, nil
	}

	if err := p.idx.EnsureCollection(ctx, collection, options.DenseDim); err != nil {
		return nil, err
	}

	var chunks []core.Chunk
	for _, doc := range documents {
		for _, text := range SplitText(doc.Text, options.ChunkSize, options.ChunkOverlap) {
			metadata := make(map[string]string, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			chunks = append(chunks, core.Chunk{Text: text, Metadata: metadata})
		}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	// Single attempt, no retries. A failure at any network hop aborts the
	// whole call.
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	records := make([]core.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		chunk.Metadata["owner_id"] = ownerID
		records[i] = core.VectorRecord{
			ID:     uuid.NewString(),
			Dense:  vectors.Dense[i],
			Sparse: vectors.Sparse[i],
			Payload: core.Payload{
				Text:     chunk.Text,
				Metadata: chunk.Metadata,
			},
		}
	}

	if err := p.idx.Upsert(ctx, collection, records); err != nil {
		return nil, err
	}

	p.logger.Info("ingested documents",
		"collection", collection,
		"owner", ownerID,
		"documents", len(documents),
		"chunks", len(chunks))

	return &Result{
		Collection:     collection,
		OwnerID:        ownerID,
		ChunksIndexed:  len(chunks),
		PointsUpserted: len(records),
	}, nil
}
