// Package product persists catalog entries as hashes behind an FT
// vector index.
package product

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/prodsearch/internal/db"
	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/product"
)

const collection = "products"

// IndexName returns the FT index name for the product collection.
func IndexName() string {
	return domain.KeyPrefix + collection + ":idx"
}

// KeyPrefix returns the hash key prefix for stored products.
func KeyPrefix() string {
	return domain.KeyPrefix + collection + ":"
}

// Hash field names shared with the search repository.
const (
	FieldProductID   = "product_id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldContent     = "__content"
	FieldVector      = "vector"
)

// IndexConfig holds the vector index parameters.
type IndexConfig struct {
	Dimensions  int
	M           int
	EFConstruct int
}

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store store
	cfg   IndexConfig
}

// New creates a product repository.
func New(s store, cfg IndexConfig) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the product index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(IndexName()).
		Prefix(KeyPrefix()).
		Numeric(FieldPrice).
		Tag(FieldCategory).
		Text(FieldContent).
		VectorHNSW(FieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.M, r.cfg.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// concurrent startup can lose the create race
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DropIndex removes the product index. Missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, IndexName()); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// UpsertBatch stores products with their embedding vectors in a single
// pipelined round-trip. Keys derive from the deterministic point ID so
// re-running a reindex overwrites in place.
func (r *Repo) UpsertBatch(ctx context.Context, products []product.Product, vectors [][]float32) error {
	if len(products) != len(vectors) {
		return fmt.Errorf("products/vectors length mismatch: %d != %d", len(products), len(vectors))
	}
	if len(products) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(products))
	for i := range products {
		p := &products[i]
		items[i] = db.HashSetItem{
			Key: KeyPrefix() + p.PointID(),
			Fields: map[string]string{
				FieldProductID:   p.ID,
				FieldName:        p.Name,
				FieldDescription: p.Description,
				FieldPrice:       strconv.FormatFloat(p.Price, 'f', -1, 64),
				FieldCategory:    p.Category,
				FieldContent:     p.EmbeddingText(),
				FieldVector:      vectorToBytes(vectors[i]),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

// Count returns the number of indexed products.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// vectorToBytes serializes a []float32 to the little-endian binary
// layout FT vector fields expect.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
