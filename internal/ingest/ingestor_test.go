package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/destek-ai/destek/internal/config"
	"github.com/destek-ai/destek/internal/extract"
)

func newTestIngestor(t *testing.T, rules map[string]config.PageRule, chunksDir string) *Ingestor {
	t.Helper()
	chunker, err := NewChunker(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	return NewIngestor(extract.NewExtractor(), chunker, NewCleaner(nil), rules, chunksDir)
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestRun_partialFailureIsolation(t *testing.T) {
	rawDir := t.TempDir()
	chunksDir := t.TempDir()
	writeRaw(t, rawDir, "gecerli.txt", "bir iki üç dört beş")
	writeRaw(t, rawDir, "bos.txt", "   \n  ")
	writeRaw(t, rawDir, "kuralsiz.txt", "bu dosyanın kuralı yok")

	rules := map[string]config.PageRule{
		"gecerli.txt": {},
		"bos.txt":     {},
		// kuralsiz.txt deliberately absent
	}
	ing := newTestIngestor(t, rules, chunksDir)
	summary, err := ing.Run(context.Background(), rawDir)
	if err != nil {
		t.Fatalf("Run should not fail on per-document problems: %v", err)
	}
	if summary.Processed != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v, want 1 processed / 2 skipped", summary)
	}

	files, err := ListChunkFiles(chunksDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "gecerli.json" {
		t.Errorf("expected only gecerli.json, got %v", files)
	}
}

func TestRun_staleChunkCleanup(t *testing.T) {
	rawDir := t.TempDir()
	chunksDir := t.TempDir()
	writeRaw(t, rawDir, "eski.txt", "eski belge içeriği burada")
	writeRaw(t, rawDir, "yeni.txt", "yeni belge içeriği burada")

	first := newTestIngestor(t, map[string]config.PageRule{"eski.txt": {}}, chunksDir)
	if _, err := first.Run(context.Background(), rawDir); err != nil {
		t.Fatal(err)
	}

	second := newTestIngestor(t, map[string]config.PageRule{"yeni.txt": {}}, chunksDir)
	if _, err := second.Run(context.Background(), rawDir); err != nil {
		t.Fatal(err)
	}

	files, err := ListChunkFiles(chunksDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "yeni.json" {
		t.Errorf("stale chunk files not cleaned: %v", files)
	}
}

func TestIngestDocument_chunkIdentity(t *testing.T) {
	rawDir := t.TempDir()
	writeRaw(t, rawDir, "terapi.txt", "bir iki üç dört beş altı")

	ing := newTestIngestor(t, map[string]config.PageRule{"terapi.txt": {}}, t.TempDir())
	chunks, err := ing.IngestDocument(filepath.Join(rawDir, "terapi.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	seen := map[string]bool{}
	for i, ch := range chunks {
		wantID := "terapi_" + string(rune('0'+i))
		if ch.ChunkID != wantID {
			t.Errorf("chunk %d: id %q, want %q", i, ch.ChunkID, wantID)
		}
		if seen[ch.ChunkID] {
			t.Errorf("duplicate chunk id %q", ch.ChunkID)
		}
		seen[ch.ChunkID] = true
		if ch.Source != "terapi.txt" {
			t.Errorf("chunk %d: source %q", i, ch.Source)
		}
	}
}

func TestChunkFile_roundTrip(t *testing.T) {
	rawDir := t.TempDir()
	chunksDir := t.TempDir()
	writeRaw(t, rawDir, "kitap.txt", "bir iki üç dört beş altı yedi sekiz")

	ing := newTestIngestor(t, map[string]config.PageRule{"kitap.txt": {}}, chunksDir)
	if _, err := ing.Run(context.Background(), rawDir); err != nil {
		t.Fatal(err)
	}
	chunks, err := ReadChunkFile(filepath.Join(chunksDir, "kitap.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks in file")
	}
	if chunks[0].ChunkID != "kitap_0" {
		t.Errorf("first chunk id %q", chunks[0].ChunkID)
	}
}
