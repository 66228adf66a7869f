package index

import "errors"

var (
	// ErrOwnerRequired is returned when a query is missing its owner
	// filter. Unfiltered queries would leak cross-tenant documents, so this
	// is a hard error, never a warning.
	ErrOwnerRequired = errors.New("owner id required")

	// ErrCollectionRequired is returned when a collection name is empty.
	ErrCollectionRequired = errors.New("collection name required")
)
