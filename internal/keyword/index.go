// Package keyword provides keyword search over ingested chunks.
package keyword

import "context"

// ChunkDocument is what gets indexed per chunk: the chunk text and the source
// document it came from.
type ChunkDocument struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Result is a single keyword search hit.
type Result struct {
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// KeywordIndex defines keyword search operations over the chunk corpus.
type KeywordIndex interface {
	Index(ctx context.Context, chunkID string, doc ChunkDocument) error
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	DocCount() (uint64, error)
	Close() error
}
