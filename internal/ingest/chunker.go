// Package ingest turns raw corpus documents into cleaned, overlapping text
// chunks persisted as per-document JSON files.
package ingest

import (
	"strings"

	"github.com/destek-ai/destek/internal/config"
)

// Chunker splits text into overlapping word-based windows.
type Chunker struct {
	sizeWords    int
	overlapWords int
}

// NewChunker creates a chunker with the given window size and overlap (in
// words). overlap must be smaller than size: otherwise the stride would be
// zero or negative and chunking would never advance.
func NewChunker(sizeWords, overlapWords int) (*Chunker, error) {
	if sizeWords <= 0 || overlapWords < 0 || overlapWords >= sizeWords {
		return nil, config.ErrInvalidChunking
	}
	return &Chunker{sizeWords: sizeWords, overlapWords: overlapWords}, nil
}

// Chunk splits text on whitespace and returns windows of sizeWords words
// taken at stride sizeWords-overlapWords, starting at word 0. The final
// window may be shorter than sizeWords. Empty or all-whitespace input
// returns nil. Pure: identical input always yields identical output.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.sizeWords - c.overlapWords
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for i := 0; i < len(words); i += step {
		end := i + c.sizeWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
