package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a rebuild after a mapping
// change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): the corpus is
	// Turkish and English stemming would mangle it.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	sourceFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("source", sourceFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes one chunk by its chunk_id.
func (b *BleveIndex) Index(ctx context.Context, chunkID string, doc ChunkDocument) error {
	return b.index.Index(chunkID, doc)
}

// Search runs a match query over chunk text and returns up to limit hits with
// their stored fields.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"text", "source"}

	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]Result, len(results.Hits))
	for i, hit := range results.Hits {
		res := Result{ChunkID: hit.ID, Score: hit.Score}
		if text, ok := hit.Fields["text"].(string); ok {
			res.Text = text
		}
		if source, ok := hit.Fields["source"].(string); ok {
			res.Source = source
		}
		out[i] = res
	}
	return out, nil
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
