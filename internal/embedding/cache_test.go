package embedding

import "testing"

func TestEmbeddingCache_getSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if _, ok := c.Get("yok"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", []float32{1})
	got, ok := c.Get("a")
	if !ok || got[0] != 1 {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
}

func TestEmbeddingCache_eviction(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("entry c should survive")
	}
}

func TestEmbeddingCache_updateExisting(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	got, _ := c.Get("a")
	if got[0] != 9 {
		t.Errorf("expected updated value, got %v", got)
	}
}
