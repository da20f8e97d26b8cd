package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/embedding"
	"github.com/harmonia-chat/harmonia/internal/models"
)

// FallbackScore is the similarity assigned to songs matched by the substring
// fallback. Fallback matches carry no real similarity, so they all get the
// same mid-range score.
const FallbackScore = 0.5

// Retriever finds catalog songs relevant to a free-text query.
type Retriever struct {
	index    *Index
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewRetriever creates a retriever over a built index.
func NewRetriever(index *Index, embedder embedding.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{index: index, embedder: embedder, logger: logger}
}

// Retrieve returns up to topK songs whose embedding similarity to query is at
// least threshold, highest first. When no song clears the threshold it falls
// back to a case-insensitive substring scan over every song field; fallback
// matches score FallbackScore in catalog order.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]models.RetrievedSong, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(r.index.songs))
	for i, vec := range r.index.vectors {
		scores[i] = scored{idx: i, score: Cosine(queryVec, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	var results []models.RetrievedSong
	for _, s := range scores {
		if len(results) >= topK {
			break
		}
		if s.score < threshold {
			break
		}
		results = append(results, models.RetrievedSong{
			Song:            r.index.songs[s.idx],
			SimilarityScore: s.score,
		})
	}

	if len(results) == 0 {
		results = r.fallbackScan(query, topK)
		r.logger.Debug("semantic retrieval empty, used fallback scan",
			zap.String("query", query),
			zap.Int("matches", len(results)))
	}
	return results, nil
}

// fallbackScan matches query as a substring of the combined song fields.
func (r *Retriever) fallbackScan(query string, topK int) []models.RetrievedSong {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}

	var matches []models.RetrievedSong
	for _, song := range r.index.songs {
		if len(matches) >= topK {
			break
		}
		if !strings.Contains(strings.ToLower(song.FieldText()), queryLower) {
			continue
		}
		matches = append(matches, models.RetrievedSong{
			Song:            song,
			SimilarityScore: FallbackScore,
			MatchedField:    matchedField(song, queryLower),
		})
	}
	return matches
}

func matchedField(song models.Song, queryLower string) string {
	names := []string{"title", "author", "genre", "mood", "year"}
	for i, value := range song.Fields() {
		if strings.Contains(strings.ToLower(value), queryLower) {
			return names[i]
		}
	}
	// Substring spans a field boundary in the combined text.
	return "combined"
}
