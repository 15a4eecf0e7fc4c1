package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/Aman-CERP/docsearch/internal/cache"
	"github.com/Aman-CERP/docsearch/internal/config"
	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/search"
	"github.com/Aman-CERP/docsearch/internal/store"
)

func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return config.Load(dir)
}

func vectorConfig(cfg *config.Config) store.VectorConfig {
	return store.VectorConfig{M: cfg.Vector.M, EfSearch: cfg.Vector.EfSearch}
}

func keywordConfig(cfg *config.Config) store.KeywordConfig {
	return store.KeywordConfig{
		MinDocFreq:      cfg.Keyword.MinDocFreq,
		MaxDocFreqRatio: cfg.Keyword.MaxDocFreqRatio,
		MaxVocabulary:   cfg.Keyword.MaxVocabulary,
	}
}

func engineConfig(cfg *config.Config) search.EngineConfig {
	return search.EngineConfig{
		Overfetch:     cfg.Search.Overfetch,
		EngineTimeout: cfg.Search.EngineTimeout.Std(),
		Analyzer: search.AnalyzerConfig{
			ShortQueryThreshold: cfg.Search.ShortQueryThreshold,
			ShortQueryWeights: search.WeightPolicy{
				Semantic: cfg.Search.ShortSemanticWeight,
				Keyword:  cfg.Search.ShortKeywordWeight,
				Strategy: search.StrategyKeywordFocused,
			},
			LongQueryWeights: search.WeightPolicy{
				Semantic: cfg.Search.LongSemanticWeight,
				Keyword:  cfg.Search.LongKeywordWeight,
				Strategy: search.StrategySemanticFocused,
			},
		},
	}
}

func loadSnapshot(cfg *config.Config) (*corpus.Snapshot, error) {
	docs, err := corpus.LoadCSV(cfg.Corpus.Path)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeCorpusNotFound, "cannot load corpus "+cfg.Corpus.Path, err)
	}
	return corpus.NewSnapshot(docs), nil
}

// newEmbedder builds the configured embedding provider. An unreachable
// Ollama server returns (nil, err) so callers can choose between
// failing and degrading to keyword-only search.
func newEmbedder(ctx context.Context, cfg *config.Config, offline bool) (embed.Embedder, error) {
	provider := strings.ToLower(cfg.Embeddings.Provider)
	if offline || provider == "static" {
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(), cfg.Embeddings.CacheSize), nil
	}

	ollama, err := embed.NewOllamaEmbedder(ctx, embed.OllamaConfig{
		Host:      cfg.Embeddings.OllamaHost,
		Model:     cfg.Embeddings.Model,
		BatchSize: cfg.Embeddings.BatchSize,
	})
	if err != nil {
		return nil, apperrors.ModelUnavailable("embedding model unavailable", err)
	}
	return embed.NewCachedEmbedder(ollama, cfg.Embeddings.CacheSize), nil
}

// buildIndexes loads or rebuilds both artifacts. With strict false a
// missing embedding model only disables the semantic engine.
func buildIndexes(ctx context.Context, cfg *config.Config, snap *corpus.Snapshot, offline, strict bool) (*search.Indexes, error) {
	manager := cache.NewManager(cfg.Cache.Dir, vectorConfig(cfg), keywordConfig(cfg))

	keyword, _, err := manager.LoadOrBuildKeyword(snap)
	if err != nil {
		return nil, err
	}

	indexes := &search.Indexes{Snapshot: snap, Keyword: keyword}

	embedder, err := newEmbedder(ctx, cfg, offline)
	if err != nil {
		if strict {
			return nil, err
		}
		slog.Warn("semantic_engine_disabled", slog.String("error", err.Error()))
		return indexes, nil
	}

	vector, _, err := manager.LoadOrBuildVector(ctx, snap, embedder)
	if err != nil {
		if strict {
			return nil, err
		}
		slog.Warn("semantic_engine_disabled", slog.String("error", err.Error()))
		return indexes, nil
	}

	indexes.Vector = vector
	indexes.Embedder = embedder
	return indexes, nil
}
