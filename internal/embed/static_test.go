package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedder_Deterministic(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a, err := e.Embed(context.Background(), "vector databases for pitch decks")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "vector databases for pitch decks")
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical text must embed identically")
	assert.Len(t, a, StaticDimensions)
}

func TestStaticEmbedder_UnitLength(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "market analysis with TTL caching")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestStaticEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "   \n ")
	require.NoError(t, err)

	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedder_SimilarTextCloserThanUnrelated(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()
	ctx := context.Background()

	base, _ := e.Embed(ctx, "repository indexing and retrieval")
	similar, _ := e.Embed(ctx, "indexing a repository for retrieval")
	unrelated, _ := e.Embed(ctx, "quarterly coffee budget spreadsheet")

	assert.Greater(t, dot(base, similar), dot(base, unrelated))
}

func TestStaticEmbedder_EmbedBatch(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	single, err := e.Embed(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
}

func TestStaticEmbedder_ClosedRejectsEmbed(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "text")
	assert.Error(t, err)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
