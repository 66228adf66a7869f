package index

import (
	"context"

	"github.com/chatflow/chatflow/core"
)

// Query describes one hybrid search request. OwnerID is deliberately
// non-optional: the owner filter is the multi-tenancy boundary and is
// applied as a pre-filter on both sub-queries, so filtered-out records never
// count toward Limit.
type Query struct {
	// Dense is the dense query vector. Its dimensionality must match the
	// collection's configured size.
	Dense []float32

	// Sparse is the sparse query vector.
	Sparse core.SparseVector

	// OwnerID restricts results to records whose metadata owner_id matches
	// exactly. Must not be empty.
	OwnerID string

	// Limit caps each sub-query and the fused result list.
	Limit int

	// ScoreThreshold drops sub-query hits scoring below it.
	ScoreThreshold float32
}

// Index manages collection lifecycle and hybrid queries against a vector
// index. Implementations must be thread-safe for concurrent use.
type Index interface {
	// EnsureCollection creates the named collection if it does not exist,
	// with one named dense vector field (cosine similarity) and one named
	// sparse vector field. Idempotent; duplicate-creation errors from the
	// backend caused by concurrent callers are treated as success.
	EnsureCollection(ctx context.Context, name string, denseDim int) error

	// Upsert writes records in one call. Records carry caller-supplied IDs;
	// re-ingesting identical chunks under freshly generated IDs duplicates
	// rather than overwrites. This is a known limitation, not a bug.
	Upsert(ctx context.Context, collection string, records []core.VectorRecord) error

	// Query runs the dense and sparse sub-queries independently, each
	// owner-filtered, capped to q.Limit and thresholded, then fuses the two
	// ranked lists with Reciprocal Rank Fusion. Returns the top q.Limit
	// records by fused score, descending.
	Query(ctx context.Context, collection string, q Query) ([]core.RetrievalResult, error)
}
