package config

// Default chunking parameters, matching the corpus the index was built with.
// Changing them requires a full re-ingest and re-build.
const (
	DefaultChunkSizeWords    = 450
	DefaultChunkOverlapWords = 50
)

// DefaultCorrections is the known-bad OCR output of the scanned corpus and
// its fixes. Applied in order; later entries may act on earlier replacements.
func DefaultCorrections() []Correction {
	return []Correction{
		{From: "ý", To: "ı"},
		{From: "ð", To: "ğ"},
		{From: "þ", To: "ş"},
		{From: "Ý", To: "İ"},
		{From: "Ð", To: "Ğ"},
		{From: "Þ", To: "Ş"},
		{From: "Cf§)", To: ""},
		{From: "•", To: ""},
		{From: "yaµ;umkırı", To: "yaşamları"},
		{From: "bn´vuranların qüncel", To: "başvuranların güncel"},
		{From: "ar.ılı.klan uzatm~", To: "aralıkları uzatma"},
	}
}

// DefaultCrisisKeywords is the risk-language pre-filter set (stage one of the
// crisis gate). Stored lowercase; matched as substrings of the lowercased query.
func DefaultCrisisKeywords() []string {
	return []string{"ölmek", "intihar", "canıma", "dayanamıyorum", "bıktım", "hap", "kesmek"}
}

// DefaultSeverityTerms are treated as crisis unconditionally, regardless of
// classifier confidence.
func DefaultSeverityTerms() []string {
	return []string{"intihar", "ölmek"}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/destek.db"
	}
	if cfg.Storage.RawDir == "" {
		cfg.Storage.RawDir = "./data/raw"
	}
	if cfg.Storage.ChunksDir == "" {
		cfg.Storage.ChunksDir = "./data/chunks"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "./data/vector_store/vector_store.index"
	}
	if cfg.Storage.ChunkMapPath == "" {
		cfg.Storage.ChunkMapPath = "./data/vector_store/chunk_map.json"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "./data/keyword_index"
	}
	if cfg.Chunking.SizeWords == 0 {
		cfg.Chunking.SizeWords = DefaultChunkSizeWords
	}
	if cfg.Chunking.OverlapWords == 0 {
		cfg.Chunking.OverlapWords = DefaultChunkOverlapWords
	}
	if cfg.Ingest.Corrections == nil {
		cfg.Ingest.Corrections = DefaultCorrections()
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "http"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Crisis.Threshold == 0 {
		cfg.Crisis.Threshold = 0.70
	}
	if cfg.Crisis.Keywords == nil {
		cfg.Crisis.Keywords = DefaultCrisisKeywords()
	}
	if cfg.Crisis.SeverityTerms == nil {
		cfg.Crisis.SeverityTerms = DefaultSeverityTerms()
	}
	if cfg.Crisis.MaxTokens == 0 {
		cfg.Crisis.MaxTokens = 128
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.1"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 120
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 3
	}
}
