// Package catalog loads the product catalog file and keeps the vector
// index in sync with it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/product"
)

// embedBatchSize caps how many products go into one embedding API call.
const embedBatchSize = 64

// Service manages catalog indexing.
type Service struct {
	repo   Repository
	embed  Embedder
	path   string
	logger *zap.Logger
}

// New creates a catalog service reading products from the given file.
func New(repo Repository, embed Embedder, path string, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, path: path, logger: logger}
}

// Load reads and validates the catalog file.
func (s *Service) Load() ([]product.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidCatalog, s.path, err)
	}

	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidCatalog, s.path, err)
	}

	seen := make(map[string]bool, len(products))
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrInvalidCatalog, i, err)
		}
		if seen[products[i].ID] {
			return nil, fmt.Errorf("%w: duplicate product id %q", domain.ErrInvalidCatalog, products[i].ID)
		}
		seen[products[i].ID] = true
	}

	return products, nil
}

// EnsureIndex creates the vector index if missing.
func (s *Service) EnsureIndex(ctx context.Context) error {
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// SeedIfEmpty indexes the catalog on first start. Returns the number of
// products indexed, zero when the index already has documents.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		s.logger.Info("Index already populated, skipping seed", zap.Int("count", count))
		return 0, nil
	}
	return s.Reindex(ctx)
}

// Rebuild drops the index, recreates it, and reindexes the catalog.
// Use when the schema changed; plain Reindex upserts in place.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	if err := s.repo.DropIndex(ctx); err != nil {
		return 0, fmt.Errorf("drop index: %w", err)
	}
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}
	return s.Reindex(ctx)
}

// Reindex loads the catalog, embeds every product, and upserts the
// whole set. Deterministic point IDs make this idempotent.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	products, err := s.Load()
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		s.logger.Warn("Catalog file is empty, nothing to index", zap.String("path", s.path))
		return 0, nil
	}

	for start := 0; start < len(products); start += embedBatchSize {
		end := min(start+embedBatchSize, len(products))
		batch := products[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].EmbeddingText()
		}

		res, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed products [%d:%d]: %w", start, end, err)
		}
		if len(res.Embeddings) != len(batch) {
			return 0, fmt.Errorf("embed products [%d:%d]: got %d vectors for %d texts",
				start, end, len(res.Embeddings), len(batch))
		}

		if err := s.repo.UpsertBatch(ctx, batch, res.Embeddings); err != nil {
			return 0, fmt.Errorf("upsert products [%d:%d]: %w", start, end, err)
		}
	}

	s.logger.Info("Catalog indexed", zap.Int("count", len(products)))
	return len(products), nil
}
