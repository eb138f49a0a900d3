package catalog

import (
	"context"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/product"
)

// Repository defines the storage contract for catalog operations.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	DropIndex(ctx context.Context) error
	UpsertBatch(ctx context.Context, products []product.Product, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
}

// Embedder vectorizes product texts for indexing.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
