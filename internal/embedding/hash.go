package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/harmonia-chat/harmonia/pkg/utils"
)

// HashEmbedder maps text into a fixed-dimension vector by feature-hashing its
// words. It needs no model files or external services, is fully deterministic,
// and texts sharing words land in the same buckets, so cosine similarity still
// reflects word overlap. It is the default provider.
type HashEmbedder struct {
	dimensions int
	cache      *Cache
}

// NewHashEmbedder returns a hash embedder with the given dimensions.
func NewHashEmbedder(dimensions, cacheSize int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &HashEmbedder{
		dimensions: dimensions,
		cache:      NewCache(cacheSize),
	}
}

// Embed returns the feature-hashed embedding for text, unit normalized.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	emb := make([]float32, e.dimensions)
	for _, word := range strings.Fields(key) {
		h := fnv.New32a()
		h.Write([]byte(word))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimensions))
		// High bit decides the sign so colliding words can cancel
		// instead of always accumulating.
		if sum&0x80000000 != 0 {
			emb[bucket] -= 1
		} else {
			emb[bucket] += 1
		}
	}
	utils.NormalizeL2(emb)

	e.cache.Set(key, emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
