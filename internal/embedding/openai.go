package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder embeds text through the OpenAI embeddings endpoint.
// It cannot embed images; catalogs indexed with it are text-search only.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

// NewOpenAIEmbedder creates a new OpenAI embeddings client.
func NewOpenAIEmbedder(apiKey, model string, timeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}

	return &OpenAIEmbedder{
		client:  openai.NewClient(apiKey),
		model:   openai.EmbeddingModel(model),
		timeout: timeout,
	}, nil
}

// Name returns the provider name.
func (e *OpenAIEmbedder) Name() string {
	return "openai"
}

// EmbedText returns an embedding vector for the given text.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embeddings response contained no data")
	}

	return resp.Data[0].Embedding, nil
}
