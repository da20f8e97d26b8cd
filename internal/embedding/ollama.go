package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/harmonia-chat/harmonia/pkg/utils"
)

// OllamaEmbedder generates embeddings through a running Ollama server.
type OllamaEmbedder struct {
	client     *api.Client
	model      string
	dimensions int
	maxRetries int
	timeout    time.Duration
	cache      *Cache
}

// NewOllamaEmbedder creates an Ollama embedder. An empty host falls back to
// the OLLAMA_HOST environment default.
func NewOllamaEmbedder(host, model string, dimensions, cacheSize int) (*OllamaEmbedder, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = parsed
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &OllamaEmbedder{
		client:     client,
		model:      model,
		dimensions: dimensions,
		maxRetries: 3,
		timeout:    30 * time.Second,
		cache:      NewCache(cacheSize),
	}, nil
}

// Embed returns the embedding for text, using cache when available.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	var (
		emb []float32
		err error
	)
	for retries := 0; retries <= e.maxRetries; retries++ {
		if retries > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(retries) * time.Second):
			}
		}
		emb, err = e.createEmbedding(ctx, text)
		if err == nil {
			e.cache.Set(text, emb)
			return emb, nil
		}
	}
	return nil, fmt.Errorf("failed to create embedding after %d retries: %w", e.maxRetries, err)
}

func (e *OllamaEmbedder) createEmbedding(ctx context.Context, text string) ([]float32, error) {
	req := api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Embeddings(ctxWithTimeout, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	emb := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		emb[i] = float32(v)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension. The actual dimension
// is determined by the Ollama model.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for OllamaEmbedder.
func (e *OllamaEmbedder) Close() error {
	return nil
}
