package embedding

import (
	"fmt"

	"github.com/harmonia-chat/harmonia/internal/config"
)

// NewEmbedder builds the embedder selected by cfg.Provider.
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimensions, cfg.CacheSize), nil
	case "onnx":
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return onnx, nil
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaHost, cfg.OllamaModel, cfg.Dimensions, cfg.CacheSize)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}
