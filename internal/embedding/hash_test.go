package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(384, 16)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Imagine by John Lennon")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(ctx, "Imagine by John Lennon")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbedderUnitNorm(t *testing.T) {
	e := NewHashEmbedder(384, 16)
	emb, err := e.Embed(context.Background(), "happy energetic pop song")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(emb) != 384 {
		t.Fatalf("dimensions = %d, want 384", len(emb))
	}

	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("norm^2 = %f, want 1.0", sum)
	}
}

func TestHashEmbedderSharedWords(t *testing.T) {
	e := NewHashEmbedder(384, 16)
	ctx := context.Background()

	rock1, _ := e.Embed(ctx, "classic rock anthem energetic")
	rock2, _ := e.Embed(ctx, "classic rock ballad energetic")
	other, _ := e.Embed(ctx, "quiet jazz instrumental mellow")

	overlap := dot(rock1, rock2)
	disjoint := dot(rock1, other)
	if overlap <= disjoint {
		t.Errorf("overlapping texts scored %f, disjoint %f; want overlap higher", overlap, disjoint)
	}
}

func TestHashEmbedderEmptyText(t *testing.T) {
	e := NewHashEmbedder(64, 16)
	emb, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for _, v := range emb {
		if v != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestHashEmbedderBatch(t *testing.T) {
	e := NewHashEmbedder(64, 16)
	embs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(embs) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(embs))
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
