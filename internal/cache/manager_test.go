package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/corpus"
	"github.com/Aman-CERP/docsearch/internal/embed"
	"github.com/Aman-CERP/docsearch/internal/store"
)

func testSnapshot(titles ...string) *corpus.Snapshot {
	docs := make([]corpus.Document, len(titles))
	for i, title := range titles {
		docs[i] = corpus.Document{ID: i, Title: title}
	}
	return corpus.NewSnapshot(docs)
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	kcfg := store.KeywordConfig{MinDocFreq: 1, MaxDocFreqRatio: 1.0, MaxVocabulary: 1000}
	return NewManager(t.TempDir(), store.DefaultVectorConfig(), kcfg)
}

func TestManager_BuildThenHit(t *testing.T) {
	m := testManager(t)
	snap := testSnapshot("apple banana", "cherry durian")
	embedder := embed.NewStaticEmbedder()
	ctx := context.Background()

	vidx, state, err := m.LoadOrBuildVector(ctx, snap, embedder)
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)
	assert.Equal(t, 2, vidx.DocCount())

	kidx, state, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)
	assert.Equal(t, 2, kidx.DocCount())

	// Second call loads the persisted artifacts.
	_, state, err = m.LoadOrBuildVector(ctx, snap, embedder)
	require.NoError(t, err)
	assert.Equal(t, StateFresh, state)

	_, state, err = m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	assert.Equal(t, StateFresh, state)
}

func TestManager_RoundTripIdenticalResults(t *testing.T) {
	m := testManager(t)
	snap := testSnapshot("solar power output", "wind power output", "river levels")
	embedder := embed.NewStaticEmbedder()
	ctx := context.Background()

	built, _, err := m.LoadOrBuildVector(ctx, snap, embedder)
	require.NoError(t, err)
	loaded, _, err := m.LoadOrBuildVector(ctx, snap, embedder)
	require.NoError(t, err)

	query, err := embedder.Embed(ctx, "power output")
	require.NoError(t, err)
	fromBuilt, err := built.Query(query, 3)
	require.NoError(t, err)
	fromLoaded, err := loaded.Query(query, 3)
	require.NoError(t, err)
	assert.Equal(t, fromBuilt, fromLoaded)

	kBuilt, _, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	kLoaded, _, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	fromKBuilt, err := kBuilt.Query(ctx, "power output", 3)
	require.NoError(t, err)
	fromKLoaded, err := kLoaded.Query(ctx, "power output", 3)
	require.NoError(t, err)
	assert.Equal(t, fromKBuilt, fromKLoaded)
}

func TestManager_StaleOnCorpusChange(t *testing.T) {
	m := testManager(t)
	embedder := embed.NewStaticEmbedder()
	ctx := context.Background()

	first := testSnapshot("apple banana")
	_, _, err := m.LoadOrBuildKeyword(first)
	require.NoError(t, err)
	_, _, err = m.LoadOrBuildVector(ctx, first, embedder)
	require.NoError(t, err)

	changed := testSnapshot("apple banana", "new document arrived")
	assert.Equal(t, StateStale, m.KeywordState(changed))
	assert.Equal(t, StateStale, m.VectorState(changed))

	kidx, state, err := m.LoadOrBuildKeyword(changed)
	require.NoError(t, err)
	assert.Equal(t, StateStale, state)
	assert.Equal(t, 2, kidx.DocCount())

	vidx, state, err := m.LoadOrBuildVector(ctx, changed, embedder)
	require.NoError(t, err)
	assert.Equal(t, StateStale, state)
	assert.Equal(t, 2, vidx.DocCount())
}

func TestManager_CorruptArtifactSelfHeals(t *testing.T) {
	m := testManager(t)
	snap := testSnapshot("apple banana", "cherry durian")

	_, _, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)

	// Truncate the artifact to simulate a corrupt write.
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "keyword.gob"), []byte("garbage"), 0o644))
	assert.Equal(t, StateStale, m.KeywordState(snap))

	idx, state, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	assert.Equal(t, StateStale, state)
	candidates, err := idx.Query(context.Background(), "apple", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, candidates)

	// The rebuilt artifact is persisted and fresh again.
	assert.Equal(t, StateFresh, m.KeywordState(snap))
}

func TestManager_StateAbsent(t *testing.T) {
	m := testManager(t)
	snap := testSnapshot("apple")

	assert.Equal(t, StateAbsent, m.VectorState(snap))
	assert.Equal(t, StateAbsent, m.KeywordState(snap))
}

func TestManager_Clear(t *testing.T) {
	m := testManager(t)
	snap := testSnapshot("apple banana", "cherry durian")

	_, _, err := m.LoadOrBuildKeyword(snap)
	require.NoError(t, err)
	require.NoError(t, m.Clear())

	assert.Equal(t, StateAbsent, m.KeywordState(snap))
}

func TestArtifactState_String(t *testing.T) {
	assert.Equal(t, "absent", StateAbsent.String())
	assert.Equal(t, "stale", StateStale.String())
	assert.Equal(t, "fresh", StateFresh.String())
}
