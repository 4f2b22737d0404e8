package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClipEmbedder is a minimal REST client to a CLIP inference service that
// embeds text and images into a shared vector space, matching the model
// used to index the catalog.
type ClipEmbedder struct {
	baseURL string
	client  *http.Client
}

// NewClipEmbedder creates a client for the CLIP inference service.
func NewClipEmbedder(baseURL string, timeout time.Duration) *ClipEmbedder {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ClipEmbedder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (e *ClipEmbedder) Name() string {
	return "clip"
}

// EmbedText returns an embedding vector for the given text.
func (e *ClipEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(map[string]string{"text": text})
	return e.post(ctx, "/embeddings/text", "application/json", bytes.NewReader(body))
}

// EmbedImage returns an embedding vector for the given image bytes.
func (e *ClipEmbedder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	return e.post(ctx, "/embeddings/image", "application/octet-stream", bytes.NewReader(data))
}

func (e *ClipEmbedder) post(ctx context.Context, path, contentType string, body *bytes.Reader) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("clip service %s returned %s", path, resp.Status)
	}

	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode clip response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("clip service %s returned empty embedding", path)
	}

	return out.Embedding, nil
}
