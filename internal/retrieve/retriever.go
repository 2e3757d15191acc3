// Package retrieve answers nearest-neighbor queries against the vector store,
// reading chunk text back from the chunk files on disk at query time.
package retrieve

import (
	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/ingest"
	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/vector"
)

// Retriever resolves vector-store search hits to chunk text. Chunk files are
// re-read per query rather than held in memory, so re-ingesting a document is
// visible to retrieval without a restart.
type Retriever struct {
	store  *vector.Store
	logger *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// New creates a Retriever over store.
func New(store *vector.Store, opts ...Option) *Retriever {
	r := &Retriever{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to k chunks nearest to queryVec, ranked from 1. Padding
// sentinels are skipped, and a hit whose chunk file cannot be read or no
// longer holds the expected element is dropped rather than failing the whole
// query. Ranks stay contiguous after drops.
func (r *Retriever) Retrieve(queryVec []float32, k int) ([]models.RetrievedChunk, error) {
	distances, positions, err := r.store.Search(queryVec, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.RetrievedChunk, 0, k)
	for i, position := range positions {
		if position == vector.Sentinel {
			continue
		}
		chunk, ok := r.resolveChunk(position)
		if !ok {
			continue
		}
		results = append(results, models.RetrievedChunk{
			Rank:     len(results) + 1,
			Position: position,
			Distance: distances[i],
			Text:     chunk.Text,
			Source:   chunk.Source,
		})
	}
	return results, nil
}

func (r *Retriever) resolveChunk(position int) (models.Chunk, bool) {
	path, ordinal, err := r.store.Resolve(position)
	if err != nil {
		r.logger.Debug("dropping unresolvable hit", zap.Int("position", position), zap.Error(err))
		return models.Chunk{}, false
	}
	chunks, err := ingest.ReadChunkFile(path)
	if err != nil {
		r.logger.Debug("dropping hit with unreadable chunk file",
			zap.Int("position", position), zap.String("file", path), zap.Error(err))
		return models.Chunk{}, false
	}
	if ordinal >= len(chunks) {
		r.logger.Debug("dropping hit past end of chunk file",
			zap.Int("position", position), zap.String("file", path),
			zap.Int("ordinal", ordinal), zap.Int("chunks", len(chunks)))
		return models.Chunk{}, false
	}
	return chunks[ordinal], true
}

// Store exposes the underlying vector store, for status reporting.
func (r *Retriever) Store() *vector.Store {
	return r.store
}
