// Package search implements semantic product search: price constraint
// extraction, query compilation, vectorization, and filtered KNN.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/price"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/query"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
)

// Request bounds.
const (
	MaxQueryLength = 512
	MaxTopK        = 100
)

// Request carries the search parameters after transport-level defaults
// have been applied.
type Request struct {
	Query    string
	TopK     int
	MinScore float64
	Category string
}

// Response carries the ranked hits along with what the query compiler
// extracted, so callers can echo the interpretation back.
type Response struct {
	Results      []result.Result
	CleanedQuery string
	Range        price.Range
}

// Service handles semantic product search.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search extracts price constraints from the query, embeds the residual
// text, and runs a filtered KNN search over the product index.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	if err := validate(req); err != nil {
		return Response{}, err
	}

	parsed := price.Extract(req.Query)
	compiled := query.Compile(parsed, req.TopK, req.MinScore, req.Category)

	embResult, err := s.embed.Embed(ctx, compiled.Text)
	if err != nil {
		return Response{}, fmt.Errorf("vectorize query: %w", err)
	}

	results, err := s.repo.SearchKNN(ctx, embResult.Embedding, compiled.Filters(), compiled.PoolSize)
	if err != nil {
		return Response{}, fmt.Errorf("search knn: %w", err)
	}

	// Post-filter: min_score
	if compiled.MinScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Score() >= compiled.MinScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	// The candidate pool overshoots top_k; trim back down.
	if len(results) > compiled.TopK {
		results = results[:compiled.TopK]
	}

	return Response{
		Results:      results,
		CleanedQuery: compiled.Text,
		Range:        compiled.Range,
	}, nil
}

func validate(req Request) error {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}
	if len(q) > MaxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if req.TopK < 1 || req.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrInvalidQuery, MaxTopK)
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		return fmt.Errorf("%w: score_threshold must be between 0 and 1", domain.ErrInvalidQuery)
	}
	return nil
}
