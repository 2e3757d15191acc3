package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/config"
)

// HTTPEmbedder calls an Ollama or OpenAI-compatible embeddings endpoint.
// With an API key it speaks the OpenAI wire format at {base}/embeddings;
// without one it speaks Ollama at {base}/api/embed. Both response shapes are
// accepted either way, since proxies mix them freely.
type HTTPEmbedder struct {
	baseURL    string
	model      string
	apiKey     string
	dimensions int
	cache      *EmbeddingCache
	client     *http.Client
	logger     *zap.Logger
}

// HTTPOption configures an HTTPEmbedder.
type HTTPOption func(*HTTPEmbedder)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(e *HTTPEmbedder) {
		e.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPEmbedder) {
		e.client = client
	}
}

// NewHTTPEmbedder creates an embedder from config. The API key is read from
// the environment variable named by cfg.APIKeyEnv; an empty or unset variable
// selects the keyless Ollama path.
func NewHTTPEmbedder(cfg config.EmbeddingConfig, opts ...HTTPOption) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("embedding base_url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding model is required")
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	e := &HTTPEmbedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		cache:      NewEmbeddingCache(cacheSize),
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     zap.NewNop(),
	}
	if cfg.APIKeyEnv != "" {
		e.apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Embed returns the embedding for a single text, consulting the cache first.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vectors, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	e.cache.Set(text, vectors[0])
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request, preserving order. Cached texts are
// not re-sent.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			out[i] = cached
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.request(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(missing), len(vectors))
	}
	for j, vec := range vectors {
		e.cache.Set(missing[j], vec)
		out[missingIdx[j]] = vec
	}
	return out, nil
}

// Dimensions returns the configured embedding dimension, or the dimension
// observed on the first successful request when not configured.
func (e *HTTPEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HTTPEmbedder.
func (e *HTTPEmbedder) Close() error {
	return nil
}

func (e *HTTPEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	var url string
	payload := map[string]any{"model": e.model, "input": texts}
	if e.apiKey != "" {
		url = e.baseURL + "/embeddings"
	} else {
		url = e.baseURL + "/api/embed"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embed request failed: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed struct {
		Embeddings [][]float32 `json:"embeddings"`
		Data       []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	vectors := parsed.Embeddings
	if len(vectors) == 0 {
		for _, d := range parsed.Data {
			vectors = append(vectors, d.Embedding)
		}
	}
	if len(vectors) == 0 {
		return nil, errors.New("embed response contained no vectors")
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("embed response vector %d is empty", i)
		}
		if e.dimensions > 0 && len(vec) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vec), e.dimensions)
		}
	}
	if e.dimensions == 0 {
		e.dimensions = len(vectors[0])
		e.logger.Debug("adopted embedding dimension from provider", zap.Int("dimensions", e.dimensions))
	}
	return vectors, nil
}
