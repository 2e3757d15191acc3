// Package config provides configuration loading and structs for the destek server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidChunking is returned when chunk overlap is not smaller than chunk
// size. With overlap >= size the window stride becomes zero or negative and
// chunking would never terminate, so this is fatal at load time.
var ErrInvalidChunking = errors.New("invalid chunking configuration: overlap_words must be smaller than size_words")

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Crisis    CrisisConfig    `yaml:"crisis"`
	LLM       LLMConfig       `yaml:"llm"`
	Chat      ChatConfig      `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, corpus, and indices.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	RawDir           string `yaml:"raw_dir"`
	ChunksDir        string `yaml:"chunks_dir"`
	VectorIndexPath  string `yaml:"vector_index_path"`
	ChunkMapPath     string `yaml:"chunk_map_path"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// ChunkingConfig holds word-window chunking parameters.
type ChunkingConfig struct {
	SizeWords    int `yaml:"size_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// PageRule selects which pages of a source document are ingested.
// StartPage is 1-based inclusive; SkipEndPages pages are trimmed from the end.
type PageRule struct {
	StartPage    int `yaml:"start_page"`
	SkipEndPages int `yaml:"skip_end_pages"`
}

// Correction is one ordered OCR find/replace pair. Later entries may act on
// text already modified by earlier ones, so list order is significant.
type Correction struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// IngestConfig holds per-document page rules and the OCR correction table.
// Rules are an explicit allow-list: documents without a rule are skipped.
type IngestConfig struct {
	Rules       map[string]PageRule `yaml:"rules"`
	Corrections []Correction        `yaml:"corrections"`
}

// EmbeddingConfig holds embedding capability settings.
// Provider is "http" (Ollama/OpenAI-compatible endpoint) or "mock".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// CrisisConfig holds crisis gate settings. Keywords and SeverityTerms are
// matched as lowercase substrings; Threshold applies strict > semantics.
type CrisisConfig struct {
	Threshold     float64  `yaml:"threshold"`
	Keywords      []string `yaml:"keywords"`
	SeverityTerms []string `yaml:"severity_terms"`
	ModelPath     string   `yaml:"model_path"`
	MaxTokens     int      `yaml:"max_tokens"`
}

// LLMConfig holds generation backend settings (Ollama chat endpoint).
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatConfig holds query-time retrieval settings.
type ChatConfig struct {
	TopK int `yaml:"top_k"`
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and validates. Returns an error if the file cannot be read or
// parsed, or if chunking parameters are invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.RawDir = expandPath(cfg.Storage.RawDir, configDir)
	cfg.Storage.ChunksDir = expandPath(cfg.Storage.ChunksDir, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.ChunkMapPath = expandPath(cfg.Storage.ChunkMapPath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	if cfg.Crisis.ModelPath != "" {
		cfg.Crisis.ModelPath = expandPath(cfg.Crisis.ModelPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that must hold before any component is built.
func (c *Config) Validate() error {
	if c.Chunking.SizeWords <= 0 {
		return fmt.Errorf("%w: size_words %d", ErrInvalidChunking, c.Chunking.SizeWords)
	}
	if c.Chunking.OverlapWords < 0 || c.Chunking.OverlapWords >= c.Chunking.SizeWords {
		return fmt.Errorf("%w: size_words %d, overlap_words %d", ErrInvalidChunking, c.Chunking.SizeWords, c.Chunking.OverlapWords)
	}
	if c.Crisis.Threshold < 0 || c.Crisis.Threshold > 1 {
		return fmt.Errorf("crisis threshold must be in [0,1], got %v", c.Crisis.Threshold)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
