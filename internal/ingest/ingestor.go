package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/destek-ai/destek/internal/config"
	"github.com/destek-ai/destek/internal/extract"
	"github.com/destek-ai/destek/internal/models"
	"go.uber.org/zap"
)

// ErrMissingRule marks a document that has no page-processing rule. Documents
// are an explicit allow-list; unknown files are never processed with default
// assumptions.
var ErrMissingRule = errors.New("no processing rule for document")

// ErrEmptyChunks marks a document whose cleaned text produced zero chunks.
var ErrEmptyChunks = errors.New("document produced no chunks")

// Ingestor reads raw corpus documents, cleans and chunks their text, and
// writes one chunk file per document. Both error conditions above are
// per-document and recoverable: the batch continues past them.
type Ingestor struct {
	extractor *extract.Extractor
	chunker   *Chunker
	cleaner   *Cleaner
	rules     map[string]config.PageRule
	chunksDir string
	logger    *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets a logger for warnings and progress.
func WithLogger(l *zap.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor writing chunk files to chunksDir.
func NewIngestor(
	extractor *extract.Extractor,
	chunker *Chunker,
	cleaner *Cleaner,
	rules map[string]config.PageRule,
	chunksDir string,
	opts ...Option,
) *Ingestor {
	ing := &Ingestor{
		extractor: extractor,
		chunker:   chunker,
		cleaner:   cleaner,
		rules:     rules,
		chunksDir: chunksDir,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Processed int
	Skipped   int
	Chunks    int
}

// Run regenerates the chunk directory from rawDir. All existing chunk files
// are deleted first so no stale chunks from a previous configuration linger.
// Documents are processed in sorted filename order; a document that cannot be
// processed is skipped with a warning and never aborts the batch.
func (ing *Ingestor) Run(ctx context.Context, rawDir string) (*Summary, error) {
	if err := ing.cleanChunksDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && ing.extractor.Supported(filepath.Ext(e.Name())) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	summary := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		chunks, err := ing.IngestDocument(filepath.Join(rawDir, name))
		if err != nil {
			summary.Skipped++
			ing.logger.Warn("document skipped", zap.String("document", name), zap.Error(err))
			continue
		}
		if err := ing.writeChunkFile(name, chunks); err != nil {
			summary.Skipped++
			ing.logger.Warn("chunk file write failed", zap.String("document", name), zap.Error(err))
			continue
		}
		summary.Processed++
		summary.Chunks += len(chunks)
		ing.logger.Info("document ingested",
			zap.String("document", name),
			zap.Int("chunks", len(chunks)))
	}
	return summary, nil
}

// IngestDocument extracts, cleans, and chunks a single document. Returns
// ErrMissingRule when the filename has no configured rule and ErrEmptyChunks
// when the cleaned text yields no chunks.
func (ing *Ingestor) IngestDocument(path string) ([]models.Chunk, error) {
	name := filepath.Base(path)
	rule, ok := ing.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRule, name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var text string
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		text, err = ing.extractor.ExtractPDF(content, rule.StartPage, rule.SkipEndPages)
	} else {
		// Page rules do not apply to non-paginated formats; the allow-list still does.
		text, err = ing.extractor.Extract(path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	pieces := ing.chunker.Chunk(ing.cleaner.Clean(text))
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyChunks, name)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = models.Chunk{
			Text:    p,
			Source:  name,
			ChunkID: fmt.Sprintf("%s_%d", stem, i),
		}
	}
	return chunks, nil
}

// writeChunkFile writes the document's chunks as an indented UTF-8 JSON array
// at <chunksDir>/<stem>.json.
func (ing *Ingestor) writeChunkFile(docName string, chunks []models.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	stem := strings.TrimSuffix(docName, filepath.Ext(docName))
	path := filepath.Join(ing.chunksDir, stem+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write chunk file: %w", err)
	}
	return nil
}

// cleanChunksDir deletes all existing chunk files and ensures the directory exists.
func (ing *Ingestor) cleanChunksDir() error {
	if err := os.MkdirAll(ing.chunksDir, 0755); err != nil {
		return fmt.Errorf("create chunks dir: %w", err)
	}
	stale, err := filepath.Glob(filepath.Join(ing.chunksDir, "*.json"))
	if err != nil {
		return fmt.Errorf("list chunk files: %w", err)
	}
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove stale chunk file %s: %w", f, err)
		}
	}
	return nil
}

// ReadChunkFile reads one per-document chunk file written by Run.
func ReadChunkFile(path string) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk file: %w", err)
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunk file %s: %w", path, err)
	}
	return chunks, nil
}

// ListChunkFiles returns the chunk files in dir in sorted filename order,
// which is the corpus order embeddings must be added to the vector index in.
func ListChunkFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list chunk files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
