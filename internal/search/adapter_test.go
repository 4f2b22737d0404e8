package search

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akmal-2004/easify-seller/internal/catalog/memory"
	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/pkg/logger"
)

// fakeEmbedder maps known queries to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func seededStore() *memory.Store {
	s := memory.NewStore()
	s.Add(model.Product{ID: "red", Name: "Red Roses", Price: 300000, Currency: "UZS", PhotoURL: "https://img/red"}, []float32{1, 0, 0})
	s.Add(model.Product{ID: "pink", Name: "Pink Peonies", Price: 500000, Currency: "UZS", PhotoURL: "https://img/pink"}, []float32{0.9, 0.1, 0})
	s.Add(model.Product{ID: "white", Name: "White Lilies", Price: 900000, Currency: "UZS", PhotoURL: "https://img/white"}, []float32{0.5, 0.5, 0})
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestByTextOrdersByDescendingScore(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{}, seededStore(), testLogger())

	result, err := a.ByText(context.Background(), "roses", Filters{K: 3})
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "red", result[0].Product.ID)
	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].Score, result[i].Score)
	}
}

func TestByTextPriceCeiling(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{}, seededStore(), testLogger())

	unfiltered, err := a.ByText(context.Background(), "roses", Filters{K: 3})
	require.NoError(t, err)

	result, err := a.ByText(context.Background(), "roses", Filters{K: 3, MaxPrice: 500000})
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Only products above the ceiling are removed; order is preserved.
	assert.Equal(t, unfiltered[0].Product.ID, result[0].Product.ID)
	assert.Equal(t, unfiltered[1].Product.ID, result[1].Product.ID)
	for _, sp := range result {
		assert.LessOrEqual(t, sp.Product.Price, int64(500000))
	}
}

func TestByTextEmptyCatalog(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{}, memory.NewStore(), testLogger())

	result, err := a.ByText(context.Background(), "roses", Filters{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestByTextEmbedderFailure(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{err: errors.New("connection refused")}, seededStore(), testLogger())

	_, err := a.ByText(context.Background(), "roses", Filters{})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestByTextCapsK(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 12; i++ {
		s.Add(model.Product{ID: string(rune('a' + i))}, []float32{1, 0, 0})
	}
	a := NewAdapter(&fakeEmbedder{}, s, testLogger())

	result, err := a.ByText(context.Background(), "anything", Filters{K: 50})
	require.NoError(t, err)
	assert.Len(t, result, maxTopK)
}

func TestByImage(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{}, seededStore(), testLogger())

	result, err := a.ByImage(context.Background(), pngBytes(t), Filters{K: 2})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "red", result[0].Product.ID)
}

func TestByImageRejectsMalformedPayload(t *testing.T) {
	a := NewAdapter(&fakeEmbedder{}, seededStore(), testLogger())

	_, err := a.ByImage(context.Background(), nil, Filters{})
	assert.ErrorIs(t, err, ErrImageDecode)

	_, err = a.ByImage(context.Background(), []byte("not an image"), Filters{})
	assert.ErrorIs(t, err, ErrImageDecode)
}

// textOnlyEmbedder implements Embedder but not ImageEmbedder.
type textOnlyEmbedder struct{}

func (textOnlyEmbedder) Name() string { return "text-only" }
func (textOnlyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}

func TestByImageUnsupportedEmbedder(t *testing.T) {
	a := NewAdapter(textOnlyEmbedder{}, seededStore(), testLogger())

	_, err := a.ByImage(context.Background(), pngBytes(t), Filters{})
	assert.ErrorIs(t, err, ErrImageSearchUnsupported)
}

func TestFormatForModel(t *testing.T) {
	result := model.SearchResult{
		{Product: model.Product{Name: "Red Roses", Description: "A dozen red roses", Price: 300000, Currency: "UZS", PhotoURL: "https://img/red"}, Score: 0.91},
	}

	text := FormatForModel(result)
	assert.Contains(t, text, "Product 1: Red Roses")
	assert.Contains(t, text, "Price: 300000 uzs")
	assert.Contains(t, text, "https://img/red")

	assert.Equal(t, "No bouquets found matching the criteria.", FormatForModel(nil))
}
