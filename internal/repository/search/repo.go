// Package search reads similarity hits from the product index.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/db"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prodsearch/internal/repository/product"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a KNN (vector similarity) search over the product
// index with filter pre-filtering.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName: product.IndexName(),
		Filters:   filters,
		Vector:    vector,
		K:         topK,
		ReturnFields: []string{
			product.FieldProductID,
			product.FieldName,
			product.FieldDescription,
			product.FieldPrice,
			product.FieldCategory,
			"__vector_score",
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseResults(sr), nil
}

// parseResults converts db.SearchResult into []result.Result.
func parseResults(sr *db.SearchResult) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, parseEntry(entry))
	}
	return results
}

func parseEntry(entry db.SearchEntry) result.Result {
	id := entry.Fields[product.FieldProductID]
	if id == "" {
		// fall back to the storage key when RETURN dropped the field
		id = strings.TrimPrefix(entry.Key, product.KeyPrefix())
	}

	var price float64
	if raw, ok := entry.Fields[product.FieldPrice]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			price = f
		}
	}

	return result.New(
		id,
		entry.Score,
		entry.Fields[product.FieldName],
		entry.Fields[product.FieldDescription],
		entry.Fields[product.FieldCategory],
		price,
	)
}
