package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/internal/chunk"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

func testChunk(id, text string) chunk.Chunk {
	return chunk.Chunk{
		ID:   id,
		Text: text,
		Meta: chunk.Metadata{Type: chunk.TypeDoc, Path: "README.md"},
	}
}

func TestChunkStore_PutGetPreservesRequestOrder(t *testing.T) {
	s, err := NewChunkStore("")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []chunk.Chunk{
		testChunk("a", "alpha"),
		testChunk("b", "beta"),
		testChunk("c", "gamma"),
	}))

	got, err := s.Get(ctx, []string{"c", "a", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "gamma", got[0].Text)
	assert.Equal(t, "README.md", got[0].Meta.Path)
}

func TestChunkStore_PutUpserts(t *testing.T) {
	s, err := NewChunkStore("")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []chunk.Chunk{testChunk("a", "old")}))
	require.NoError(t, s.Put(ctx, []chunk.Chunk{testChunk("a", "new")}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, []string{"a"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Text)
}

func TestManager_OpenUnknownCollectionIsNotIndexed(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	_, err = m.Open("repo_0000000000000000")
	assert.True(t, deckerrors.HasCode(err, deckerrors.ErrCodeNotIndexed))
	assert.False(t, m.Exists("repo_0000000000000000"))
}

func TestManager_UpsertThenQueryJoinsChunks(t *testing.T) {
	// Given a fresh collection with two stored chunks
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	c, err := m.OpenOrCreate("repo_abc", 3)
	require.NoError(t, err)

	err = c.Upsert(ctx,
		[]chunk.Chunk{testChunk("doc:README.md:0", "readme text"), testChunk("doc:README.md:1", "more text")},
		[][]float32{{1, 0, 0}, {0, 1, 0}})
	require.NoError(t, err)

	// When querying near the first vector
	results, err := c.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Then results carry chunk content and come back nearest first
	assert.Equal(t, "doc:README.md:0", results[0].Chunk.ID)
	assert.Equal(t, "readme text", results[0].Chunk.Text)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestManager_CollectionSurvivesReopen(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	m, err := NewManager(root)
	require.NoError(t, err)

	c, err := m.OpenOrCreate("repo_abc", 3)
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx,
		[]chunk.Chunk{testChunk("a", "persisted")},
		[][]float32{{0, 0, 1}}))
	require.NoError(t, m.Close())

	// A second manager over the same root sees the indexed data.
	m2, err := NewManager(root)
	require.NoError(t, err)
	defer func() { _ = m2.Close() }()

	assert.True(t, m2.Exists("repo_abc"))
	c2, err := m2.Open("repo_abc")
	require.NoError(t, err)

	results, err := c2.Query(ctx, []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].Chunk.Text)
}

func TestManager_OpenOrCreateRejectsDimensionChange(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	_, err = m.OpenOrCreate("repo_abc", 3)
	require.NoError(t, err)

	_, err = m.OpenOrCreate("repo_abc", 4)
	assert.True(t, deckerrors.HasCode(err, deckerrors.ErrCodeDimensionMismatch))
}

func TestManager_DropRemovesCollection(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	c, err := m.OpenOrCreate("repo_abc", 3)
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx,
		[]chunk.Chunk{testChunk("a", "x")}, [][]float32{{1, 0, 0}}))

	require.NoError(t, m.Drop("repo_abc"))

	assert.False(t, m.Exists("repo_abc"))
	assert.NoDirExists(t, filepath.Join(root, "collections", "repo_abc"))

	ids, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_ListReturnsSortedIDs(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	for _, id := range []string{"repo_bbb", "repo_aaa"} {
		c, err := m.OpenOrCreate(id, 3)
		require.NoError(t, err)
		require.NoError(t, c.Upsert(context.Background(),
			[]chunk.Chunk{testChunk(id, "x")}, [][]float32{{1, 0, 0}}))
	}

	ids, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"repo_aaa", "repo_bbb"}, ids)
}
