package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/embed"
)

func buildTestVectorIndex(t *testing.T, titles ...string) *VectorIndex {
	t.Helper()
	snap := snapshotFromTitles(titles...)
	idx, err := BuildVectorIndex(context.Background(), snap, embed.NewStaticEmbedder(), DefaultVectorConfig())
	require.NoError(t, err)
	return idx
}

func TestVectorIndex_SelfSimilarity(t *testing.T) {
	titles := []string{
		"consumer price index monthly summary",
		"satellite imagery of coastal erosion",
		"school enrollment by district",
	}
	idx := buildTestVectorIndex(t, titles...)

	embedder := embed.NewStaticEmbedder()
	for docID, title := range titles {
		vec, err := embedder.Embed(context.Background(), title)
		require.NoError(t, err)

		candidates, err := idx.Query(vec, 3)
		require.NoError(t, err)
		require.NotEmpty(t, candidates)

		assert.Equal(t, docID, candidates[0].DocID)
		assert.InDelta(t, 1.0, candidates[0].Score, 1e-4)
	}
}

func TestVectorIndex_DescendingOrder(t *testing.T) {
	idx := buildTestVectorIndex(t,
		"renewable energy production",
		"fossil fuel consumption",
		"municipal water quality",
		"energy production forecast",
	)

	vec, err := embed.NewStaticEmbedder().Embed(context.Background(), "energy production")
	require.NoError(t, err)

	candidates, err := idx.Query(vec, 4)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(candidates), 2)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := buildTestVectorIndex(t, "single document")

	_, err := idx.Query([]float32{1, 2, 3}, 5)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})
}

func TestVectorIndex_ZeroK(t *testing.T) {
	idx := buildTestVectorIndex(t, "single document")

	candidates, err := idx.Query(make([]float32, embed.StaticDimensions), 0)
	require.NoError(t, err)
	assert.Nil(t, candidates)
}

func TestVectorIndex_SaveLoadRoundTrip(t *testing.T) {
	titles := []string{
		"traffic accident statistics",
		"public library locations",
		"air quality measurements",
	}
	idx := buildTestVectorIndex(t, titles...)

	path := filepath.Join(t.TempDir(), "vector.hnsw")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadVectorIndex(path, DefaultVectorConfig())
	require.NoError(t, err)

	assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())
	assert.Equal(t, idx.DocCount(), loaded.DocCount())
	assert.Equal(t, idx.Dimensions(), loaded.Dimensions())

	vec, err := embed.NewStaticEmbedder().Embed(context.Background(), titles[1])
	require.NoError(t, err)

	before, err := idx.Query(vec, 3)
	require.NoError(t, err)
	after, err := loaded.Query(vec, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadVectorIndex_MissingFiles(t *testing.T) {
	_, err := LoadVectorIndex(filepath.Join(t.TempDir(), "absent.hnsw"), DefaultVectorConfig())
	assert.Error(t, err)
}
