package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/embedding"
	"github.com/harmonia-chat/harmonia/internal/models"
)

func testIndex(t *testing.T) (*Index, embedding.Embedder) {
	t.Helper()
	cat, err := catalog.New([]models.Song{
		{Title: "Imagine", Author: "John Lennon", Genre: "Rock", Mood: "peaceful", Year: 1971},
		{Title: "Billie Jean", Author: "Michael Jackson", Genre: "Pop", Mood: "energetic", Year: 1982},
		{Title: "Hotel California", Author: "Eagles", Genre: "Rock", Mood: "mysterious", Year: 1976},
		{Title: "Happy", Author: "Pharrell Williams", Genre: "Pop", Mood: "happy", Year: 2013},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	embedder := embedding.NewHashEmbedder(128, 64)
	idx, err := BuildIndex(context.Background(), cat, embedder)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return idx, embedder
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamped", []float32{1, 0}, []float32{-1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Cosine = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestRetrieveTopK(t *testing.T) {
	idx, embedder := testIndex(t)
	r := NewRetriever(idx, embedder, nil)

	results, err := r.Retrieve(context.Background(), "Song: Imagine by John Lennon - Genre: Rock - Mood: peaceful - Year: 1971", 2, 0.0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) > 2 {
		t.Fatalf("got %d results, want at most 2", len(results))
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Title != "Imagine" {
		t.Errorf("top result = %q, want Imagine", results[0].Title)
	}
	for i := 1; i < len(results); i++ {
		if results[i].SimilarityScore > results[i-1].SimilarityScore {
			t.Error("results not sorted by descending similarity")
		}
	}
}

func TestRetrieveFallback(t *testing.T) {
	idx, embedder := testIndex(t)
	r := NewRetriever(idx, embedder, nil)

	// An impossible threshold forces the substring fallback.
	results, err := r.Retrieve(context.Background(), "eagles", 3, 1.1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d fallback matches, want 1", len(results))
	}
	if results[0].Title != "Hotel California" {
		t.Errorf("fallback match = %q, want Hotel California", results[0].Title)
	}
	if results[0].SimilarityScore != FallbackScore {
		t.Errorf("fallback score = %f, want %f", results[0].SimilarityScore, FallbackScore)
	}
	if results[0].MatchedField != "author" {
		t.Errorf("matched field = %q, want author", results[0].MatchedField)
	}
}

func TestRetrieveFallbackNoMatch(t *testing.T) {
	idx, embedder := testIndex(t)
	r := NewRetriever(idx, embedder, nil)

	results, err := r.Retrieve(context.Background(), "zzzzqqq", 3, 1.1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results for nonsense query, want 0", len(results))
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	idx, embedder := testIndex(t)
	r := NewRetriever(idx, embedder, nil)

	results, err := r.Retrieve(context.Background(), "   ", 3, 0.3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if results != nil {
		t.Fatalf("got %v for empty query, want nil", results)
	}
}

func TestValidQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"who wrote Imagine?", true},
		{"Rock", true},
		{"", false},
		{"   ", false},
		{"!!!???", false},
		{"...", false},
		{"a", true},
	}
	for _, tt := range tests {
		if got := ValidQuery(tt.query); got != tt.want {
			t.Errorf("ValidQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
