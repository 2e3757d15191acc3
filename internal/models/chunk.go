package models

// Chunk is one overlapping text window of a source document, as persisted in
// the per-document chunk files. ChunkID is "<document-stem>_<sequence>" and
// is strictly increasing in emission order within a document.
type Chunk struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	ChunkID string `json:"chunk_id"`
}

// RetrievedChunk is one semantic search hit with provenance. Rank is 1-based
// in the order returned by the vector index (ascending distance).
type RetrievedChunk struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
	Source   string  `json:"source"`
}
