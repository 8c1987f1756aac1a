package embed

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps StaticEmbedder and counts provider calls.
type countingEmbedder struct {
	*StaticEmbedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.StaticEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(int64(len(texts)))
	return c.StaticEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder_SecondCallHitsCache(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := cached.Embed(ctx, "same query")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "same query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load(), "second call must not reach the provider")
}

func TestCachedEmbedder_BatchOnlyForwardsMisses(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.Embed(ctx, "b")
	require.NoError(t, err)
	inner.calls.Store(0)

	vecs, err := cached.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, int64(2), inner.calls.Load(), "cached text must not be re-embedded")
}

func TestCachedEmbedder_PassesThroughMetadata(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(), 10)
	assert.Equal(t, StaticDimensions, cached.Dimensions())
	assert.Equal(t, "static-fnv", cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
}
