package search

import (
	"context"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(
		ctx context.Context, vector []float32, filters filter.Expression, topK int,
	) ([]result.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
