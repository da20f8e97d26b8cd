package retrieval

import (
	"context"
	"fmt"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/embedding"
	"github.com/harmonia-chat/harmonia/internal/models"
)

// Index holds every catalog song with its precomputed embedding. It is built
// once at startup and read-only afterwards.
type Index struct {
	songs   []models.Song
	vectors [][]float32
}

// BuildIndex embeds the canonical rendering of every song in the catalog.
// Any embedding failure aborts the build; a partial index would silently
// degrade retrieval.
func BuildIndex(ctx context.Context, cat *catalog.Catalog, embedder embedding.Embedder) (*Index, error) {
	songs := cat.All()
	texts := make([]string, len(songs))
	for i, song := range songs {
		texts[i] = song.Rendering()
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	if len(vectors) != len(songs) {
		return nil, fmt.Errorf("embedded %d of %d songs", len(vectors), len(songs))
	}

	return &Index{songs: songs, vectors: vectors}, nil
}

// Size returns the number of indexed songs.
func (idx *Index) Size() int {
	return len(idx.songs)
}

// Songs returns the indexed songs in catalog order.
func (idx *Index) Songs() []models.Song {
	return idx.songs
}
