package keyword

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "keyword.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestBleveIndex_indexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	docs := map[string]ChunkDocument{
		"bdt_0":  {Text: "otomatik düşünceler ve bilişsel çarpıtmalar", Source: "bdt.pdf"},
		"bdt_1":  {Text: "davranış deneyleri planlamak", Source: "bdt.pdf"},
		"uyku_0": {Text: "uyku hijyeni ve rutinler", Source: "uyku.pdf"},
	}
	for id, doc := range docs {
		if err := idx.Index(ctx, id, doc); err != nil {
			t.Fatal(err)
		}
	}

	results, err := idx.Search(ctx, "uyku", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}
	if results[0].ChunkID != "uyku_0" || results[0].Source != "uyku.pdf" {
		t.Errorf("unexpected hit %+v", results[0])
	}
	if results[0].Text == "" || results[0].Score <= 0 {
		t.Errorf("stored fields/score missing: %+v", results[0])
	}
}

func TestBleveIndex_caseInsensitiveMatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	if err := idx.Index(ctx, "c1", ChunkDocument{Text: "Kaygı bozuklukları", Source: "kaygi.pdf"}); err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(ctx, "kaygı", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("lowercased query should match capitalized token, got %d hits", len(results))
	}
}

func TestBleveIndex_reopenKeepsDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keyword.bleve")
	idx, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(context.Background(), "c1", ChunkDocument{Text: "nefes egzersizi", Source: "s.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	count, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 doc after reopen, got %d", count)
	}
}

func TestBleveIndex_searchLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	for _, id := range []string{"a_0", "a_1", "a_2", "a_3"} {
		if err := idx.Index(ctx, id, ChunkDocument{Text: "stres yönetimi teknikleri", Source: "stres.pdf"}); err != nil {
			t.Fatal(err)
		}
	}
	results, err := idx.Search(ctx, "stres", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("limit not applied, got %d hits", len(results))
	}
}
