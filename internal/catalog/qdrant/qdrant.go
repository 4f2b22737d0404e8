// Package qdrant implements the catalog store over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akmal-2004/easify-seller/internal/catalog"
	"github.com/akmal-2004/easify-seller/internal/model"
)

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// product fields stored in the point payload.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStore creates a new Qdrant-backed catalog store.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Query performs a nearest-neighbor search over the collection.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]catalog.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]catalog.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, catalog.Hit{
			Product: productFromPayload(r.Payload),
			Score:   r.Score,
		})
	}
	return hits, nil
}

// Get retrieves a single product by point id.
func (s *Store) Get(ctx context.Context, id string) (model.Product, error) {
	var resp struct {
		Result *struct {
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/%s", s.url, s.collection, id)
	if err := s.getJSON(ctx, url, &resp); err != nil {
		return model.Product{}, err
	}
	if resp.Result == nil {
		return model.Product{}, catalog.ErrNotFound
	}
	p := productFromPayload(resp.Result.Payload)
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

func productFromPayload(payload map[string]any) model.Product {
	p := model.Product{}
	if v, ok := payload["product_id"].(string); ok {
		p.ID = v
	}
	if v, ok := payload["name"].(string); ok {
		p.Name = v
	}
	if v, ok := payload["description"].(string); ok {
		p.Description = v
	}
	if v, ok := payload["price"].(float64); ok {
		p.Price = int64(v)
	}
	if v, ok := payload["currency"].(string); ok {
		p.Currency = v
	}
	if v, ok := payload["photo_url"].(string); ok {
		p.PhotoURL = v
	}
	return p
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *Store) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Store) do(req *http.Request, out any) error {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
