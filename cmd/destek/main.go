// Package main is the destek CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/chat"
	"github.com/destek-ai/destek/internal/config"
	"github.com/destek-ai/destek/internal/crisis"
	"github.com/destek-ai/destek/internal/embedding"
	"github.com/destek-ai/destek/internal/extract"
	"github.com/destek-ai/destek/internal/ingest"
	"github.com/destek-ai/destek/internal/keyword"
	"github.com/destek-ai/destek/internal/llm"
	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/resources"
	"github.com/destek-ai/destek/internal/server"
	"github.com/destek-ai/destek/internal/storage"
	"github.com/destek-ai/destek/internal/vector"
	"github.com/destek-ai/destek/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/destek/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// uses the project's config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; API keys for hosted embedding backends live there.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "build":
		runBuild()
	case "chat":
		runChat()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("destek version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`destek - retrieval-augmented mental-health support chatbot

Usage:
  destek server  [-config path] [-debug]    start the API server
  destek ingest  [-config path] [-debug]    chunk the raw PDF corpus into chunk files
  destek build   [-config path] [-debug]    embed chunk files and build the vector + keyword indices
  destek chat    [-server url] [-k n] <message>   one-shot chat against a running server
  destek status  [-server url]              show server status
  destek version                            print version
  destek help                               show this help
`)
}

func mustLoad(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded", zap.String("config_path", resolvedPath))
	return cfg, logger
}

// newEmbedder builds the configured embedding client. The mock provider is
// for tests and offline demos only.
func newEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	if cfg.Embedding.Provider == "mock" {
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
	}
	return embedding.NewHTTPEmbedder(cfg.Embedding, embedding.WithLogger(logger))
}

// newClassifier loads the local crisis classifier. A missing or unloadable
// model degrades the gate to severity terms only, which must be loud.
func newClassifier(cfg *config.Config, logger *zap.Logger) crisis.Classifier {
	if cfg.Crisis.ModelPath == "" {
		err := fmt.Errorf("no crisis model_path configured")
		logger.Warn("crisis classifier disabled", zap.Error(err))
		return crisis.UnavailableClassifier{Reason: err}
	}
	classifier, err := crisis.NewONNXClassifier(cfg.Crisis.ModelPath, cfg.Crisis.MaxTokens)
	if err != nil {
		logger.Error("crisis classifier failed to load, gate degrades to severity terms only",
			zap.String("model_path", cfg.Crisis.ModelPath), zap.Error(err))
		return crisis.UnavailableClassifier{Reason: err}
	}
	logger.Info("crisis classifier loaded", zap.String("model_path", cfg.Crisis.ModelPath))
	return classifier
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustLoad(*configPath, *debug)
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	defer embedder.Close()

	classifier := newClassifier(cfg, logger)
	defer classifier.Close()
	gate := crisis.NewGate(cfg.Crisis.Keywords, cfg.Crisis.SeverityTerms, cfg.Crisis.Threshold,
		classifier, crisis.WithLogger(logger))

	generator, err := llm.NewOllamaGenerator(cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}
	defer generator.Close()

	provider := resources.NewProvider(cfg.Storage.VectorIndexPath, cfg.Storage.ChunkMapPath,
		resources.WithLogger(logger))
	if err := provider.Load(); err != nil {
		logger.Warn("vector store not loaded; chat unavailable until ingest+build complete", zap.Error(err))
	}
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := provider.Watch(watchCtx); err != nil {
		logger.Warn("vector store watch failed; restart required after rebuilds", zap.Error(err))
	}

	var kw keyword.KeywordIndex
	if cfg.Storage.KeywordIndexPath != "" {
		bleveIdx, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
		if err != nil {
			logger.Warn("keyword index unavailable", zap.Error(err))
		} else {
			kw = bleveIdx
			defer bleveIdx.Close()
		}
	}

	responder := chat.NewResponder(gate, embedder, provider, generator, cfg.Chat.TopK,
		chat.WithLogger(logger))

	srv := server.NewServer(responder, store, kw, provider, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustLoad(*configPath, *debug)
	defer logger.Sync()

	chunker, err := ingest.NewChunker(cfg.Chunking.SizeWords, cfg.Chunking.OverlapWords)
	if err != nil {
		logger.Fatal("Invalid chunking configuration", zap.Error(err))
	}
	ingestor := ingest.NewIngestor(
		extract.NewExtractor(),
		chunker,
		ingest.NewCleaner(cfg.Ingest.Corrections),
		cfg.Ingest.Rules,
		cfg.Storage.ChunksDir,
		ingest.WithLogger(logger),
	)

	summary, err := ingestor.Run(context.Background(), cfg.Storage.RawDir)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}
	fmt.Printf("Ingestion complete: %d documents processed, %d skipped, %d chunks written\n",
		summary.Processed, summary.Skipped, summary.Chunks)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustLoad(*configPath, *debug)
	defer logger.Sync()

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	defer embedder.Close()

	if err := buildIndices(context.Background(), cfg, embedder, logger); err != nil {
		logger.Fatal("Build failed", zap.Error(err))
	}
}

// buildIndices embeds every chunk in corpus order (sorted chunk filenames,
// emission order within each file) and writes the vector store plus the
// keyword index. The chunk map records one file path per index position.
func buildIndices(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) error {
	files, err := ingest.ListChunkFiles(cfg.Storage.ChunksDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no chunk files in %s; run ingest first", cfg.Storage.ChunksDir)
	}

	var chunkMap vector.ChunkMap
	var allChunks []models.Chunk
	for _, file := range files {
		chunks, err := ingest.ReadChunkFile(file)
		if err != nil {
			return err
		}
		for _, c := range chunks {
			chunkMap = append(chunkMap, file)
			allChunks = append(allChunks, c)
		}
	}
	logger.Info("embedding corpus", zap.Int("files", len(files)), zap.Int("chunks", len(allChunks)))

	texts := make([]string, len(allChunks))
	for i, c := range allChunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embedder returned no vectors")
	}

	index, err := vector.NewFlatIndex(len(vectors[0]))
	if err != nil {
		return err
	}
	if err := index.Add(vectors); err != nil {
		return err
	}
	store, err := vector.NewStore(index, chunkMap)
	if err != nil {
		return err
	}
	if err := store.Save(cfg.Storage.VectorIndexPath, cfg.Storage.ChunkMapPath); err != nil {
		return err
	}
	logger.Info("vector store written",
		zap.Int("vectors", index.Size()),
		zap.String("index_path", cfg.Storage.VectorIndexPath))

	if cfg.Storage.KeywordIndexPath == "" {
		return nil
	}
	// Full rebuild: stale entries from removed documents must not linger.
	if err := os.RemoveAll(cfg.Storage.KeywordIndexPath); err != nil {
		return fmt.Errorf("remove old keyword index: %w", err)
	}
	kw, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return err
	}
	defer kw.Close()
	for _, c := range allChunks {
		if err := kw.Index(ctx, c.ChunkID, keyword.ChunkDocument{Text: c.Text, Source: c.Source}); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ChunkID, err)
		}
	}
	logger.Info("keyword index written",
		zap.Int("chunks", len(allChunks)),
		zap.String("index_path", cfg.Storage.KeywordIndexPath))
	fmt.Printf("Build complete: %d chunks embedded from %d documents\n", len(allChunks), len(files))
	return nil
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	k := fs.Int("k", 0, "number of passages to retrieve (0 = server default)")
	sessionID := fs.String("session", "", "session id to persist the turn under")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Println("Usage: destek chat [-server url] [-k n] [-session id] <message>")
		os.Exit(1)
	}

	resp, err := chatViaHTTP(*serverURL, models.ChatRequest{Query: query, K: *k, SessionID: *sessionID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(resp.Reply)
	if len(resp.Sources) > 0 {
		fmt.Printf("\nKaynaklar: %s\n", strings.Join(resp.Sources, ", "))
	}
}

func chatViaHTTP(serverURL string, req models.ChatRequest) (*models.ChatResponse, error) {
	endpoint, err := url.JoinPath(serverURL, "/api/v1/chat")
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpResp, err := http.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("server returned %s: %s", httpResp.Status, strings.TrimSpace(string(snippet)))
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	endpoint, err := url.JoinPath(*serverURL, "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	httpResp, err := http.Get(endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer httpResp.Body.Close()

	var status map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	pretty, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(pretty))
}
