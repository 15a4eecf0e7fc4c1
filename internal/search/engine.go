package search

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/store"
)

// Engine defaults.
const (
	// DefaultTopK is the result count when the caller does not specify one.
	DefaultTopK = 10

	// DefaultOverfetch is the per-engine candidate multiplier. Each
	// engine is asked for overfetch*k candidates so deduplication and
	// re-weighting still leave k results to return.
	DefaultOverfetch = 3

	// DefaultEngineTimeout bounds each engine's share of a query.
	DefaultEngineTimeout = 5 * time.Second
)

// EngineConfig tunes the hybrid engine.
type EngineConfig struct {
	Overfetch     int
	EngineTimeout time.Duration
	Analyzer      AnalyzerConfig
}

// DefaultEngineConfig returns the standard engine tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Overfetch:     DefaultOverfetch,
		EngineTimeout: DefaultEngineTimeout,
		Analyzer:      DefaultAnalyzerConfig(),
	}
}

// Indexes is one consistent generation of search state. The engine
// swaps generations atomically so in-flight queries keep the snapshot
// they started with.
type Indexes struct {
	Snapshot *corpus.Snapshot
	Vector   *store.VectorIndex
	Keyword  *store.KeywordIndex
	Embedder embed.Embedder
}

// Engine answers hybrid queries over the current index generation.
// Safe for concurrent use.
type Engine struct {
	cfg    EngineConfig
	handle atomic.Pointer[Indexes]
}

// NewEngine creates an engine with no indexes loaded.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Overfetch <= 0 {
		cfg.Overfetch = DefaultOverfetch
	}
	if cfg.EngineTimeout <= 0 {
		cfg.EngineTimeout = DefaultEngineTimeout
	}
	if cfg.Analyzer.ShortQueryThreshold <= 0 {
		cfg.Analyzer = DefaultAnalyzerConfig()
	}
	return &Engine{cfg: cfg}
}

// Swap installs a new index generation for subsequent queries.
func (e *Engine) Swap(indexes *Indexes) {
	e.handle.Store(indexes)
}

// Capability reports which engines the current generation can serve.
func (e *Engine) Capability() Capability {
	state := e.handle.Load()
	if state == nil {
		return CapabilityNone
	}
	semantic := state.Vector != nil && state.Embedder != nil
	keyword := state.Keyword != nil
	switch {
	case semantic && keyword:
		return CapabilityBoth
	case semantic:
		return CapabilitySemanticOnly
	case keyword:
		return CapabilityKeywordOnly
	default:
		return CapabilityNone
	}
}

// DocCount returns the document count of the current generation.
func (e *Engine) DocCount() int {
	state := e.handle.Load()
	if state == nil || state.Snapshot == nil {
		return 0
	}
	return state.Snapshot.Len()
}

// Search runs the query against every operational engine and merges
// the results. A single engine failing marks the response degraded;
// the request errors only when no engine can answer.
func (e *Engine) Search(ctx context.Context, query string, k int) (*Response, error) {
	started := time.Now()

	policy, err := AnalyzeQuery(query, e.cfg.Analyzer)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultTopK
	}

	state := e.handle.Load()
	if state == nil || state.Snapshot == nil {
		return nil, apperrors.IndexUnbuilt("no index loaded, run the indexer first", nil)
	}

	capability := e.Capability()
	if capability == CapabilityNone {
		return nil, apperrors.EnginesUnavailable("no search engine operational", nil)
	}

	fetchK := k * e.cfg.Overfetch

	var (
		semantic    []store.Candidate
		keyword     []store.Candidate
		semanticErr error
		keywordErr  error
	)

	g, gctx := errgroup.WithContext(ctx)

	if state.Vector != nil && state.Embedder != nil {
		g.Go(func() error {
			engineCtx, cancel := context.WithTimeout(gctx, e.cfg.EngineTimeout)
			defer cancel()

			vec, err := state.Embedder.Embed(engineCtx, query)
			if err != nil {
				semanticErr = apperrors.New(apperrors.ErrCodeEmbeddingFailed, "query embedding failed", err)
				return nil
			}
			semantic, semanticErr = state.Vector.Query(vec, fetchK)
			return nil
		})
	} else {
		semanticErr = apperrors.ModelUnavailable("semantic engine not loaded", nil)
	}

	if state.Keyword != nil {
		g.Go(func() error {
			engineCtx, cancel := context.WithTimeout(gctx, e.cfg.EngineTimeout)
			defer cancel()

			var err error
			keyword, err = state.Keyword.Query(engineCtx, query, fetchK)
			if err != nil {
				keywordErr = apperrors.Wrap(apperrors.ErrCodeInternal, err)
			}
			return nil
		})
	} else {
		keywordErr = apperrors.IndexUnbuilt("keyword engine not loaded", nil)
	}

	// Goroutines report failures through the captured error slots, so
	// one engine failing never cancels the other.
	_ = g.Wait()

	if semanticErr != nil && keywordErr != nil {
		return nil, apperrors.EnginesUnavailable("all engines failed", semanticErr)
	}

	degraded := semanticErr != nil || keywordErr != nil
	if semanticErr != nil {
		slog.Warn("semantic_engine_failed", slog.String("error", semanticErr.Error()))
	}
	if keywordErr != nil {
		slog.Warn("keyword_engine_failed", slog.String("error", keywordErr.Error()))
	}

	results := mergeCandidates(semantic, keyword, policy, state.Snapshot, k)

	took := time.Since(started)
	slog.Info("search_completed",
		slog.String("query", query),
		slog.String("strategy", policy.Strategy),
		slog.Bool("degraded", degraded),
		slog.Int("results", len(results)),
		slog.Duration("took", took))

	return &Response{
		Query:    query,
		Strategy: policy.Strategy,
		Degraded: degraded,
		Results:  results,
		Took:     took,
	}, nil
}
