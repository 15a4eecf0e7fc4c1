// Package config loads layered YAML configuration: built-in defaults,
// then a project file (.docsearch.yaml), then DOCSEARCH_* environment
// variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete docsearch configuration.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus" json:"corpus"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Keyword    KeywordConfig    `yaml:"keyword" json:"keyword"`
	Vector     VectorConfig     `yaml:"vector" json:"vector"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// CorpusConfig locates the document corpus.
type CorpusConfig struct {
	// Path is the CSV file holding the document catalog.
	Path string `yaml:"path" json:"path"`
}

// CacheConfig locates persisted index artifacts.
type CacheConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// SearchConfig tunes query classification and result merging.
type SearchConfig struct {
	// ShortQueryThreshold is the trimmed character length at or below
	// which a query counts as keyword-seeking.
	ShortQueryThreshold int `yaml:"short_query_threshold" json:"short_query_threshold"`

	// Short and long query weight pairs. Each pair must sum to 1.0.
	ShortSemanticWeight float64 `yaml:"short_semantic_weight" json:"short_semantic_weight"`
	ShortKeywordWeight  float64 `yaml:"short_keyword_weight" json:"short_keyword_weight"`
	LongSemanticWeight  float64 `yaml:"long_semantic_weight" json:"long_semantic_weight"`
	LongKeywordWeight   float64 `yaml:"long_keyword_weight" json:"long_keyword_weight"`

	// Overfetch is the per-engine candidate multiplier before merging.
	Overfetch int `yaml:"overfetch" json:"overfetch"`

	// MaxResults is the default result count.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// EngineTimeout bounds each engine's share of a query.
	EngineTimeout Duration `yaml:"engine_timeout" json:"engine_timeout"`
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "ollama" or "static".
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	CacheSize  int    `yaml:"cache_size" json:"cache_size"`
}

// KeywordConfig tunes TF-IDF vocabulary selection.
type KeywordConfig struct {
	MinDocFreq      int     `yaml:"min_doc_freq" json:"min_doc_freq"`
	MaxDocFreqRatio float64 `yaml:"max_doc_freq_ratio" json:"max_doc_freq_ratio"`
	MaxVocabulary   int     `yaml:"max_vocabulary" json:"max_vocabulary"`
}

// VectorConfig tunes HNSW graph construction.
type VectorConfig struct {
	M        int `yaml:"m" json:"m"`
	EfSearch int `yaml:"ef_search" json:"ef_search"`
}

// ServerConfig configures the HTTP API and logging.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Config{
		Corpus: CorpusConfig{Path: "catalog.csv"},
		Cache:  CacheConfig{Dir: filepath.Join(home, ".docsearch", "cache")},
		Search: SearchConfig{
			ShortQueryThreshold: 6,
			ShortSemanticWeight: 0.3,
			ShortKeywordWeight:  0.7,
			LongSemanticWeight:  0.7,
			LongKeywordWeight:   0.3,
			Overfetch:           3,
			MaxResults:          10,
			EngineTimeout:       Duration(5 * time.Second),
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			OllamaHost: "http://localhost:11434",
			BatchSize:  32,
			CacheSize:  1000,
		},
		Keyword: KeywordConfig{
			MinDocFreq:      2,
			MaxDocFreqRatio: 0.95,
			MaxVocabulary:   10000,
		},
		Vector: VectorConfig{
			M:        16,
			EfSearch: 64,
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			LogLevel: "info",
		},
	}
}

// Load builds the effective configuration for a directory.
// Precedence, lowest to highest: defaults, project file, environment.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges .docsearch.yaml or .docsearch.yml if present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".docsearch.yaml", ".docsearch.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	// No config file is fine, defaults apply.
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero values from other.
func (c *Config) mergeWith(other *Config) {
	if other.Corpus.Path != "" {
		c.Corpus.Path = other.Corpus.Path
	}
	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}

	if other.Search.ShortQueryThreshold != 0 {
		c.Search.ShortQueryThreshold = other.Search.ShortQueryThreshold
	}
	if other.Search.ShortSemanticWeight != 0 {
		c.Search.ShortSemanticWeight = other.Search.ShortSemanticWeight
	}
	if other.Search.ShortKeywordWeight != 0 {
		c.Search.ShortKeywordWeight = other.Search.ShortKeywordWeight
	}
	if other.Search.LongSemanticWeight != 0 {
		c.Search.LongSemanticWeight = other.Search.LongSemanticWeight
	}
	if other.Search.LongKeywordWeight != 0 {
		c.Search.LongKeywordWeight = other.Search.LongKeywordWeight
	}
	if other.Search.Overfetch != 0 {
		c.Search.Overfetch = other.Search.Overfetch
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.EngineTimeout != 0 {
		c.Search.EngineTimeout = other.Search.EngineTimeout
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Keyword.MinDocFreq != 0 {
		c.Keyword.MinDocFreq = other.Keyword.MinDocFreq
	}
	if other.Keyword.MaxDocFreqRatio != 0 {
		c.Keyword.MaxDocFreqRatio = other.Keyword.MaxDocFreqRatio
	}
	if other.Keyword.MaxVocabulary != 0 {
		c.Keyword.MaxVocabulary = other.Keyword.MaxVocabulary
	}

	if other.Vector.M != 0 {
		c.Vector.M = other.Vector.M
	}
	if other.Vector.EfSearch != 0 {
		c.Vector.EfSearch = other.Vector.EfSearch
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies DOCSEARCH_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCSEARCH_CORPUS"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("DOCSEARCH_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("DOCSEARCH_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCSEARCH_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCSEARCH_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DOCSEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DOCSEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	pairs := []struct {
		name              string
		semantic, keyword float64
	}{
		{"short", c.Search.ShortSemanticWeight, c.Search.ShortKeywordWeight},
		{"long", c.Search.LongSemanticWeight, c.Search.LongKeywordWeight},
	}
	for _, p := range pairs {
		if p.semantic < 0 || p.semantic > 1 || p.keyword < 0 || p.keyword > 1 {
			return fmt.Errorf("%s query weights must be between 0 and 1", p.name)
		}
		if math.Abs(p.semantic+p.keyword-1.0) > 0.01 {
			return fmt.Errorf("%s query weights must sum to 1.0, got %.2f", p.name, p.semantic+p.keyword)
		}
	}

	if c.Search.ShortQueryThreshold < 1 {
		return fmt.Errorf("short_query_threshold must be positive, got %d", c.Search.ShortQueryThreshold)
	}
	if c.Search.Overfetch < 1 {
		return fmt.Errorf("overfetch must be positive, got %d", c.Search.Overfetch)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.Search.MaxResults)
	}

	provider := strings.ToLower(c.Embeddings.Provider)
	if provider != "ollama" && provider != "static" {
		return fmt.Errorf("embeddings.provider must be 'ollama' or 'static', got %s", c.Embeddings.Provider)
	}

	if c.Keyword.MinDocFreq < 1 {
		return fmt.Errorf("min_doc_freq must be positive, got %d", c.Keyword.MinDocFreq)
	}
	if c.Keyword.MaxDocFreqRatio <= 0 || c.Keyword.MaxDocFreqRatio > 1 {
		return fmt.Errorf("max_doc_freq_ratio must be in (0, 1], got %f", c.Keyword.MaxDocFreqRatio)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
