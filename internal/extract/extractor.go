// Package extract provides text extraction from corpus document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from corpus files (.pdf, .txt, .md, .docx).
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether the extension (with leading dot) can be extracted.
func (e *Extractor) Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt", ".md", ".docx":
		return true
	}
	return false
}

// Extract reads the file at path and returns its full text content.
// PDF callers that need page-range selection should use ExtractPDF directly.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFRange(content, 1, 0)
	case ".docx":
		return extractDOCX(content)
	case ".txt", ".md", "":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
}

// ExtractPDF extracts text from PDF bytes, restricted to the page window
// [startPage, numPages-skipEndPages]. startPage is 1-based inclusive;
// skipEndPages pages are trimmed from the end. Pages outside the document's
// actual page count are skipped silently, so rules written against an assumed
// page count degrade gracefully instead of erroring.
func (e *Extractor) ExtractPDF(content []byte, startPage, skipEndPages int) (string, error) {
	return extractPDFRange(content, startPage, skipEndPages)
}
