package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSupported(t *testing.T) {
	e := NewExtractor()
	for _, ext := range []string{".pdf", ".txt", ".md", ".docx", ".PDF"} {
		if !e.Supported(ext) {
			t.Errorf("%s should be supported", ext)
		}
	}
	for _, ext := range []string{".xlsx", ".pptx", ".exe", ""} {
		if e.Supported(ext) {
			t.Errorf("%s should not be supported", ext)
		}
	}
}

func TestExtract_plainText(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	path := filepath.Join(dir, "notlar.txt")
	if err := os.WriteFile(path, []byte("bilişsel çarpıtma örnekleri"), 0600); err != nil {
		t.Fatal(err)
	}
	text, err := e.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "bilişsel çarpıtma örnekleri" {
		t.Errorf("got %q", text)
	}
}

func TestExtractPlain_invalidUTF8(t *testing.T) {
	text, err := extractPlain([]byte{0x66, 0xff, 0x6f})
	if err != nil {
		t.Fatal(err)
	}
	if text == "" {
		t.Error("expected replaced text, got empty")
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(docxDocumentXMLPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	content := buildDocx(t, `<w:document><w:body>`+
		`<w:p w:rsidR="00A"><w:r><w:t>otomatik</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">düşünceler</w:t></w:r></w:p>`+
		`</w:body></w:document>`)
	text, err := extractDOCX(content)
	if err != nil {
		t.Fatal(err)
	}
	if text != "otomatik düşünceler" {
		t.Errorf("got %q", text)
	}
}

func TestExtractDOCX_notAZip(t *testing.T) {
	if _, err := extractDOCX([]byte("plain bytes")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestExtractPDFRange_invalidBytes(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractPDF([]byte("not a pdf"), 1, 0); err == nil {
		t.Error("expected error for invalid PDF bytes")
	}
}
