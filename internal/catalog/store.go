// Package catalog defines the product catalog query boundary.
package catalog

import (
	"context"
	"errors"

	"github.com/akmal-2004/easify-seller/internal/model"
)

// ErrNotFound is returned when a product id has no catalog record.
var ErrNotFound = errors.New("product not found")

// Hit is one nearest-neighbor match from a similarity query.
type Hit struct {
	Product model.Product
	Score   float64
}

// Store is a read-only view of the product catalog. Query returns hits in
// non-increasing similarity order; the catalog is indexed with the same
// embedding model used by the search adapter.
type Store interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Hit, error)
	Get(ctx context.Context, id string) (model.Product, error)
}
