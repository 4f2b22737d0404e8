// Package search translates user queries into catalog similarity searches.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/akmal-2004/easify-seller/internal/catalog"
	"github.com/akmal-2004/easify-seller/internal/embedding"
	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/pkg/logger"
	"github.com/akmal-2004/easify-seller/pkg/metrics"
)

var (
	// ErrImageDecode signals an empty or malformed image payload.
	ErrImageDecode = errors.New("image could not be decoded")

	// ErrCatalogUnavailable signals that the catalog store could not be reached.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrImageSearchUnsupported signals that the configured embedder has no
	// image model.
	ErrImageSearchUnsupported = errors.New("image search is not supported by the configured embedder")
)

const (
	defaultTopK = 3
	maxTopK     = 5
)

// Filters restricts search results after similarity ranking. Zero values
// leave the corresponding bound open. Prices are in minor currency units.
type Filters struct {
	MinPrice int64
	MaxPrice int64
	K        int
}

// Adapter runs similarity searches against the catalog store.
type Adapter struct {
	embedder embedding.Embedder
	store    catalog.Store
	logger   *logger.Logger
}

// NewAdapter creates a search adapter.
func NewAdapter(embedder embedding.Embedder, store catalog.Store, log *logger.Logger) *Adapter {
	return &Adapter{
		embedder: embedder,
		store:    store,
		logger:   log,
	}
}

// ByText embeds the query text and returns the top matching products.
// An empty catalog yields an empty result, not an error.
func (a *Adapter) ByText(ctx context.Context, query string, f Filters) (model.SearchResult, error) {
	start := time.Now()

	vector, err := a.embedder.EmbedText(ctx, query)
	if err != nil {
		metrics.RecordSearch("text", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	result, err := a.query(ctx, vector, f)
	if err != nil {
		metrics.RecordSearch("text", "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordSearch("text", "ok", time.Since(start).Seconds())
	return result, nil
}

// ByImage decodes and embeds the image and returns the top matching products.
func (a *Adapter) ByImage(ctx context.Context, data []byte, f Filters) (model.SearchResult, error) {
	start := time.Now()

	imageEmbedder, ok := a.embedder.(embedding.ImageEmbedder)
	if !ok {
		return nil, ErrImageSearchUnsupported
	}

	if len(data) == 0 {
		return nil, ErrImageDecode
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	vector, err := imageEmbedder.EmbedImage(ctx, data)
	if err != nil {
		metrics.RecordSearch("image", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	result, err := a.query(ctx, vector, f)
	if err != nil {
		metrics.RecordSearch("image", "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordSearch("image", "ok", time.Since(start).Seconds())
	return result, nil
}

// query runs the nearest-neighbor search, dedupes by product id keeping the
// best score, applies price filters post-hoc and cuts to k. The store is not
// assumed to support server-side numeric filtering.
func (a *Adapter) query(ctx context.Context, vector []float32, f Filters) (model.SearchResult, error) {
	k := f.K
	if k <= 0 {
		k = defaultTopK
	}
	if k > maxTopK {
		k = maxTopK
	}

	// Oversample so dedupe and price filtering still leave k candidates.
	hits, err := a.store.Query(ctx, vector, 2*k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	best := make(map[string]catalog.Hit, len(hits))
	for _, h := range hits {
		if prev, ok := best[h.Product.ID]; !ok || h.Score > prev.Score {
			best[h.Product.ID] = h
		}
	}

	result := make(model.SearchResult, 0, len(best))
	for _, h := range best {
		if f.MinPrice > 0 && h.Product.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && h.Product.Price > f.MaxPrice {
			continue
		}
		result = append(result, model.ScoredProduct{Product: h.Product, Score: h.Score})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	if len(result) > k {
		result = result[:k]
	}
	return result, nil
}
