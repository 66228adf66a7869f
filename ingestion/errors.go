package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrOwnerRequired is returned when an owner id is not provided.
	ErrOwnerRequired = errors.New("owner id required")

	// ErrUnsupportedFile is returned for source files of an unknown type.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
