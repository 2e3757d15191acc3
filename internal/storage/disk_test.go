package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "chunks")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.json"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	total, err := DiskUsageBytes(filepath.Join(dir, "a.bin"), sub)
	if err != nil {
		t.Fatal(err)
	}
	if total != 150 {
		t.Errorf("expected 150 bytes, got %d", total)
	}
}

func TestDiskUsageBytes_missingPathSkipped(t *testing.T) {
	total, err := DiskUsageBytes(filepath.Join(t.TempDir(), "yok"), "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected 0 for missing paths, got %d", total)
	}
}
