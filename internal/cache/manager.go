// Package cache manages the on-disk lifecycle of search index
// artifacts. Each artifact is validated against the current corpus
// fingerprint and rebuilt independently when absent, stale, or
// corrupt; a rebuilt artifact is persisted before it is returned.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	"github.com/Aman-CERP/docsearch/internal/store"
)

// ArtifactState describes a cached artifact relative to the corpus.
type ArtifactState int

const (
	// StateAbsent means no artifact file exists.
	StateAbsent ArtifactState = iota
	// StateStale means the artifact exists but does not match the
	// corpus fingerprint, or could not be deserialized.
	StateStale
	// StateFresh means the artifact matches the corpus and is usable.
	StateFresh
)

// String returns the lowercase state name.
func (s ArtifactState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Artifact file names within the cache directory.
const (
	vectorFile  = "vector.hnsw"
	keywordFile = "keyword.gob"
)

// Manager loads or rebuilds index artifacts under a cache directory.
type Manager struct {
	dir        string
	vectorCfg  store.VectorConfig
	keywordCfg store.KeywordConfig
}

// NewManager creates a manager rooted at dir.
func NewManager(dir string, vectorCfg store.VectorConfig, keywordCfg store.KeywordConfig) *Manager {
	return &Manager{
		dir:        dir,
		vectorCfg:  vectorCfg,
		keywordCfg: keywordCfg,
	}
}

// Dir returns the cache directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) vectorPath() string  { return filepath.Join(m.dir, vectorFile) }
func (m *Manager) keywordPath() string { return filepath.Join(m.dir, keywordFile) }

// VectorState inspects the vector artifact without building anything.
func (m *Manager) VectorState(snap *corpus.Snapshot) ArtifactState {
	if _, err := os.Stat(m.vectorPath()); err != nil {
		return StateAbsent
	}
	idx, err := store.LoadVectorIndex(m.vectorPath(), m.vectorCfg)
	if err != nil || idx.Fingerprint() != snap.Fingerprint() || idx.DocCount() != snap.Len() {
		return StateStale
	}
	return StateFresh
}

// KeywordState inspects the keyword artifact without building anything.
func (m *Manager) KeywordState(snap *corpus.Snapshot) ArtifactState {
	if _, err := os.Stat(m.keywordPath()); err != nil {
		return StateAbsent
	}
	idx, err := store.LoadKeywordIndex(m.keywordPath())
	if err != nil || idx.Fingerprint() != snap.Fingerprint() || idx.DocCount() != snap.Len() {
		return StateStale
	}
	return StateFresh
}

// LoadOrBuildVector returns a vector index matching the snapshot,
// rebuilding and persisting it when the cached artifact is unusable.
// The returned state reports what was found before any rebuild.
func (m *Manager) LoadOrBuildVector(ctx context.Context, snap *corpus.Snapshot, embedder embed.Embedder) (*store.VectorIndex, ArtifactState, error) {
	state := StateAbsent
	if _, err := os.Stat(m.vectorPath()); err == nil {
		idx, err := store.LoadVectorIndex(m.vectorPath(), m.vectorCfg)
		if err == nil && idx.Fingerprint() == snap.Fingerprint() && idx.DocCount() == snap.Len() {
			slog.Debug("vector_cache_hit", slog.String("path", m.vectorPath()))
			return idx, StateFresh, nil
		}
		state = StateStale
		m.logRebuild("vector", err)
	}

	lock := newBuildLock(m.dir)
	if err := lock.Lock(); err != nil {
		return nil, state, err
	}
	defer func() { _ = lock.Unlock() }()

	// Another process may have built the artifact while we waited.
	if idx, err := store.LoadVectorIndex(m.vectorPath(), m.vectorCfg); err == nil &&
		idx.Fingerprint() == snap.Fingerprint() && idx.DocCount() == snap.Len() {
		return idx, state, nil
	}

	idx, err := store.BuildVectorIndex(ctx, snap, embedder, m.vectorCfg)
	if err != nil {
		return nil, state, fmt.Errorf("build vector index: %w", err)
	}
	if err := idx.Save(m.vectorPath()); err != nil {
		return nil, state, fmt.Errorf("persist vector index: %w", err)
	}
	return idx, state, nil
}

// LoadOrBuildKeyword returns a keyword index matching the snapshot,
// rebuilding and persisting it when the cached artifact is unusable.
func (m *Manager) LoadOrBuildKeyword(snap *corpus.Snapshot) (*store.KeywordIndex, ArtifactState, error) {
	state := StateAbsent
	if _, err := os.Stat(m.keywordPath()); err == nil {
		idx, err := store.LoadKeywordIndex(m.keywordPath())
		if err == nil && idx.Fingerprint() == snap.Fingerprint() && idx.DocCount() == snap.Len() {
			slog.Debug("keyword_cache_hit", slog.String("path", m.keywordPath()))
			return idx, StateFresh, nil
		}
		state = StateStale
		m.logRebuild("keyword", err)
	}

	lock := newBuildLock(m.dir)
	if err := lock.Lock(); err != nil {
		return nil, state, err
	}
	defer func() { _ = lock.Unlock() }()

	if idx, err := store.LoadKeywordIndex(m.keywordPath()); err == nil &&
		idx.Fingerprint() == snap.Fingerprint() && idx.DocCount() == snap.Len() {
		return idx, state, nil
	}

	idx := store.BuildKeywordIndex(snap, m.keywordCfg)
	if err := idx.Save(m.keywordPath()); err != nil {
		return nil, state, fmt.Errorf("persist keyword index: %w", err)
	}
	return idx, state, nil
}

// Clear removes all cached artifacts.
func (m *Manager) Clear() error {
	for _, path := range []string{
		m.vectorPath(),
		m.vectorPath() + ".meta",
		m.keywordPath(),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

func (m *Manager) logRebuild(artifact string, cause error) {
	if cause != nil {
		slog.Warn("cache_artifact_invalid",
			slog.String("artifact", artifact),
			slog.String("error", cause.Error()))
		return
	}
	slog.Info("cache_artifact_stale", slog.String("artifact", artifact))
}
