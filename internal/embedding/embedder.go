// Package embedding provides query embedding clients for catalog search.
package embedding

import (
	"context"
)

// Embedder converts free text into the vector space the catalog is indexed in.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// ImageEmbedder embeds raw image bytes into the same vector space.
// Only backends with a multimodal model implement it.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)
}
