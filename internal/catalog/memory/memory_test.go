package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akmal-2004/easify-seller/internal/catalog"
	"github.com/akmal-2004/easify-seller/internal/model"
)

func TestQueryOrdersBySimilarity(t *testing.T) {
	s := NewStore()
	s.Add(model.Product{ID: "far"}, []float32{0, 1, 0})
	s.Add(model.Product{ID: "near"}, []float32{1, 0, 0})
	s.Add(model.Product{ID: "mid"}, []float32{0.7, 0.7, 0})

	hits, err := s.Query(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "near", hits[0].Product.ID)
	assert.Equal(t, "mid", hits[1].Product.ID)
	assert.Equal(t, "far", hits[2].Product.ID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestQueryRespectsTopK(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Add(model.Product{ID: id}, []float32{1, 0})
	}

	hits, err := s.Query(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestQueryEmptyStore(t *testing.T) {
	s := NewStore()

	hits, err := s.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestGet(t *testing.T) {
	s := NewStore()
	s.Add(model.Product{ID: "p1", Name: "Roses"}, []float32{1})

	p, err := s.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Roses", p.Name)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
