package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Search.ShortQueryThreshold)
	assert.Equal(t, 0.3, cfg.Search.ShortSemanticWeight)
	assert.Equal(t, 0.7, cfg.Search.ShortKeywordWeight)
	assert.Equal(t, 0.7, cfg.Search.LongSemanticWeight)
	assert.Equal(t, 0.3, cfg.Search.LongKeywordWeight)
	assert.Equal(t, 3, cfg.Search.Overfetch)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Keyword.MinDocFreq)
	assert.Equal(t, 0.95, cfg.Keyword.MaxDocFreqRatio)
	assert.Equal(t, 10000, cfg.Keyword.MaxVocabulary)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
}

func TestLoad_ProjectFileOverrides(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
corpus:
  path: /data/catalog.csv
search:
  short_query_threshold: 8
  max_results: 25
  engine_timeout: 2s
embeddings:
  provider: static
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/catalog.csv", cfg.Corpus.Path)
	assert.Equal(t, 8, cfg.Search.ShortQueryThreshold)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 2*time.Second, cfg.Search.EngineTimeout.Std())
	assert.Equal(t, "static", cfg.Embeddings.Provider)

	// Untouched settings keep their defaults.
	assert.Equal(t, 0.7, cfg.Search.ShortKeywordWeight)
	assert.Equal(t, 10000, cfg.Keyword.MaxVocabulary)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("embeddings:\n  provider: static\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), content, 0o644))

	t.Setenv("DOCSEARCH_EMBEDDINGS_PROVIDER", "ollama")
	t.Setenv("DOCSEARCH_MAX_RESULTS", "50")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, 50, cfg.Search.MaxResults)
}

func TestLoad_InvalidWeights(t *testing.T) {
	dir := t.TempDir()
	content := []byte("search:\n  short_semantic_weight: 0.9\n  short_keyword_weight: 0.9\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), content, 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestLoad_InvalidProvider(t *testing.T) {
	dir := t.TempDir()
	content := []byte("embeddings:\n  provider: cloud\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), content, 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), []byte("corpus: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Corpus.Path = "/data/catalog.csv"

	path := filepath.Join(t.TempDir(), ".docsearch.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.csv", loaded.Corpus.Path)
}
