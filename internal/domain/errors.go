package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCatalog signals an unreadable or malformed catalog file.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
