// Package product defines the catalog entry stored in the vector index.
package product

import (
	"fmt"

	"github.com/google/uuid"
)

// Product is a single catalog entry as read from the catalog file.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// Validate checks the fields required for indexing.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("product %s: name is required", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: price must not be negative", p.ID)
	}
	return nil
}

// EmbeddingText is the text that represents the product in vector
// space: name and description joined the way queries reference them.
func (p *Product) EmbeddingText() string {
	return p.Name + " - " + p.Description
}

// PointID derives the deterministic storage ID for the product: a
// UUIDv5 over the original catalog ID, stable across reindexes so
// upserts overwrite instead of duplicating.
func (p *Product) PointID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("product:"+p.ID)).String()
}
