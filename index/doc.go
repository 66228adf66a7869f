// Package index defines the vector index abstraction used by the retrieval
// pipeline, plus the Reciprocal Rank Fusion algorithm that combines the
// dense and sparse sub-query rankings.
//
// Implementations:
//
//   - index/qdrant: Qdrant REST adapter with named dense/sparse vectors
//   - index/mock: in-memory index for tests
//
// Every query carries a non-optional owner filter; see Query.
package index
