package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder tracks how many texts reach the inner embedder.
type countingEmbedder struct {
	inner *StaticEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls += len(texts)
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int                    { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string                  { return c.inner.ModelName() }
func (c *countingEmbedder) Available(ctx context.Context) bool { return c.inner.Available(ctx) }
func (c *countingEmbedder) Close() error                       { return c.inner.Close() }

func TestCachedEmbedder_RepeatHitsCache(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder()}
	cached := NewCachedEmbedder(counting, 10)
	defer func() { _ = cached.Close() }()

	ctx := context.Background()
	first, err := cached.Embed(ctx, "renewable energy statistics")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "renewable energy statistics")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedEmbedder_BatchPartialCache(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder()}
	cached := NewCachedEmbedder(counting, 10)
	defer func() { _ = cached.Close() }()

	ctx := context.Background()
	_, err := cached.Embed(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, 1, counting.calls)

	vecs, err := cached.EmbedBatch(ctx, []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// Only beta and gamma were misses.
	assert.Equal(t, 3, counting.calls)

	direct, err := NewStaticEmbedder().Embed(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, direct, vecs[1])
}

func TestCachedEmbedder_Passthrough(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(), 0)
	defer func() { _ = cached.Close() }()

	assert.Equal(t, StaticDimensions, cached.Dimensions())
	assert.Equal(t, "static:fnv-384", cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
}
