package embedding

import "testing"

func TestCacheSetGet(t *testing.T) {
	c := NewCache(2)

	c.Set("a", []float32{1})
	got, ok := c.Get("a")
	if !ok || got[0] != 1 {
		t.Fatalf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("found a key that was never set")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)

	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // refresh a so b is oldest
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	got, _ := c.Get("a")
	if got[0] != 9 {
		t.Errorf("Get(a) = %v, want [9]", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
