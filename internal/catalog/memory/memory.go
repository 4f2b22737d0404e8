// Package memory implements an in-memory catalog store using brute-force
// cosine similarity. It backs tests and local runs without Qdrant.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/akmal-2004/easify-seller/internal/catalog"
	"github.com/akmal-2004/easify-seller/internal/model"
)

// Store holds products and their vectors in memory.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
	vectors  [][]float32
}

// NewStore creates an empty in-memory store.
func NewStore() *Store { return &Store{} }

// Add inserts a product with its embedding vector.
func (s *Store) Add(p model.Product, vector []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	s.vectors = append(s.vectors, vector)
}

// Query returns the topK most similar products by cosine similarity.
// Vectors are assumed L2-normalized.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]catalog.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	hits := make([]catalog.Hit, len(s.products))
	for i := range s.products {
		hits[i] = catalog.Hit{
			Product: s.products[i],
			Score:   dot(s.vectors[i], vector),
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}

// Get retrieves a product by id.
func (s *Store) Get(ctx context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, catalog.ErrNotFound
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
