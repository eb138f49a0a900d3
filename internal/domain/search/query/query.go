// Package query compiles an extracted query into the embedding text,
// structured filter, and candidate-pool size for the vector search.
package query

import (
	"github.com/kailas-cloud/prodsearch/internal/domain/price"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/filter"
)

// Payload field names the structured filter conditions refer to.
const (
	PriceField    = "price"
	CategoryField = "category"
)

// MinCandidatePool is the smallest candidate pool requested from the
// vector search. Overshooting top_k keeps enough candidates after
// score-threshold and payload filtering to still fill top_k results.
const MinCandidatePool = 12

// Compiled is a fully prepared search query: the text handed to the
// embedder plus the structured parameters handed to the vector store.
type Compiled struct {
	Text     string
	Range    price.Range
	Category string
	TopK     int
	MinScore float64
	PoolSize int
}

// Compile turns an extracted query and request parameters into a
// Compiled query. Pure data transformation; it cannot fail.
func Compile(parsed price.Parsed, topK int, minScore float64, category string) Compiled {
	pool := topK
	if pool < MinCandidatePool {
		pool = MinCandidatePool
	}

	return Compiled{
		Text:     parsed.Query,
		Range:    parsed.Range,
		Category: category,
		TopK:     topK,
		MinScore: minScore,
		PoolSize: pool,
	}
}

// Filters renders the compiled constraints as a conjunction: an
// inclusive price range (only when at least one bound is set) and a
// category tag match (only when a category was requested).
func (c *Compiled) Filters() filter.Expression {
	var conditions []filter.Condition

	if !c.Range.IsZero() {
		conditions = append(conditions, filter.NumericRange(PriceField, c.Range.Min, c.Range.Max))
	}
	if c.Category != "" {
		conditions = append(conditions, filter.Match(CategoryField, c.Category))
	}

	return filter.And(conditions...)
}
