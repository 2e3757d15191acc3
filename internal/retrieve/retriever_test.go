package retrieve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/vector"
)

func writeChunkFile(t *testing.T, path string, chunks []models.Chunk) {
	t.Helper()
	data, err := json.Marshal(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// Corpus: kaygi.json holds two chunks (positions 0 and 2), depresyon.json one
// chunk (position 1). Vectors are axis-aligned so queries pick exact positions.
func buildRetriever(t *testing.T) (*Retriever, string) {
	t.Helper()
	dir := t.TempDir()
	kaygi := filepath.Join(dir, "kaygi.json")
	depresyon := filepath.Join(dir, "depresyon.json")
	writeChunkFile(t, kaygi, []models.Chunk{
		{Text: "kaygı ilk parça", Source: "kaygi.pdf", ChunkID: "kaygi_0"},
		{Text: "kaygı ikinci parça", Source: "kaygi.pdf", ChunkID: "kaygi_1"},
	})
	writeChunkFile(t, depresyon, []models.Chunk{
		{Text: "depresyon parçası", Source: "depresyon.pdf", ChunkID: "depresyon_0"},
	})

	index, err := vector.NewFlatIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Add([][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}); err != nil {
		t.Fatal(err)
	}
	store, err := vector.NewStore(index, vector.ChunkMap{kaygi, depresyon, kaygi})
	if err != nil {
		t.Fatal(err)
	}
	return New(store), depresyon
}

func TestRetrieve_rankAndText(t *testing.T) {
	r, _ := buildRetriever(t)
	results, err := r.Retrieve([]float32{0, 1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Rank != 1 || results[0].Text != "depresyon parçası" || results[0].Source != "depresyon.pdf" {
		t.Errorf("rank 1 wrong: %+v", results[0])
	}
	if results[0].Distance > 1e-9 {
		t.Errorf("exact match distance should be ~0, got %v", results[0].Distance)
	}
	if results[1].Rank != 2 {
		t.Errorf("ranks must be contiguous, got %d", results[1].Rank)
	}
}

func TestRetrieve_ordinalPicksElementWithinFile(t *testing.T) {
	r, _ := buildRetriever(t)
	// Position 2 is the second chunk mapped to kaygi.json.
	results, err := r.Retrieve([]float32{0, 0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Text != "kaygı ikinci parça" {
		t.Errorf("expected the second element of the file, got %q", results[0].Text)
	}
}

func TestRetrieve_sentinelPaddingSkipped(t *testing.T) {
	r, _ := buildRetriever(t)
	results, err := r.Retrieve([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 real results from a 3-vector index, got %d", len(results))
	}
}

func TestRetrieve_unreadableFileDroppedNotFatal(t *testing.T) {
	r, depresyon := buildRetriever(t)
	if err := os.Remove(depresyon); err != nil {
		t.Fatal(err)
	}
	results, err := r.Retrieve([]float32{0, 1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected the unreadable hit dropped, got %d results", len(results))
	}
	for i, res := range results {
		if res.Rank != i+1 {
			t.Errorf("ranks must stay contiguous after drops: result %d has rank %d", i, res.Rank)
		}
		if res.Source == "depresyon.pdf" {
			t.Error("dropped chunk leaked into results")
		}
	}
}

func TestRetrieve_dimensionMismatch(t *testing.T) {
	r, _ := buildRetriever(t)
	if _, err := r.Retrieve([]float32{1, 0}, 1); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
