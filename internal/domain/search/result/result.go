// Package result holds the typed search hit returned to callers.
package result

// Result is a single product hit from a similarity search.
type Result struct {
	id          string
	score       float64
	name        string
	description string
	category    string
	price       float64
}

// New creates a search result.
func New(id string, score float64, name, description, category string, price float64) Result {
	return Result{
		id:          id,
		score:       score,
		name:        name,
		description: description,
		category:    category,
		price:       price,
	}
}

// ID returns the product identifier from the payload.
func (r *Result) ID() string { return r.id }

// Score returns the similarity score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Name returns the product name.
func (r *Result) Name() string { return r.name }

// Description returns the product description.
func (r *Result) Description() string { return r.description }

// Category returns the product category.
func (r *Result) Category() string { return r.category }

// Price returns the product price.
func (r *Result) Price() float64 { return r.price }
