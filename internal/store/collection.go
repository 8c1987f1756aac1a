package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/deckforge/deckforge/internal/chunk"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

const (
	vectorsFile = "vectors.hnsw"
	chunksFile  = "chunks.db"
)

// Collection bundles one repository's vector index and chunk store.
type Collection struct {
	id      string
	dir     string
	lock    *writeLock
	vectors *VectorIndex
	chunks  *ChunkStore
}

// ID returns the collection identifier.
func (c *Collection) ID() string { return c.id }

// Upsert stores chunks with their vectors and persists the index. The
// write lock serializes writers across processes.
func (c *Collection) Upsert(ctx context.Context, chunks []chunk.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors)), nil)
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := c.lock.Lock(); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			slog.Warn("collection_unlock_failed",
				slog.String("collection", c.id),
				slog.String("error", err.Error()))
		}
	}()

	if err := c.chunks.Put(ctx, chunks); err != nil {
		return err
	}

	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
	}
	if err := c.vectors.Add(ctx, ids, vectors); err != nil {
		return err
	}

	if err := c.vectors.Save(filepath.Join(c.dir, vectorsFile)); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return nil
}

// Query searches the vector index and joins hits with their stored
// chunks, nearest first.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	hits, err := c.vectors.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []Result{}, nil
	}

	ids := make([]string, len(hits))
	byID := make(map[string]Hit, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		byID[h.ID] = h
	}

	chunks, err := c.chunks.Get(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(chunks))
	for _, ch := range chunks {
		h := byID[ch.ID]
		results = append(results, Result{Chunk: ch, Distance: h.Distance, Score: h.Score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results, nil
}

// Count returns the number of live vectors in the collection.
func (c *Collection) Count() int { return c.vectors.Count() }

// Dimensions returns the collection's vector dimension.
func (c *Collection) Dimensions() int { return c.vectors.Dimensions() }

// Close releases the collection's resources.
func (c *Collection) Close() error {
	verr := c.vectors.Close()
	cerr := c.chunks.Close()
	if verr != nil {
		return verr
	}
	return cerr
}

// Manager opens and caches collections under a single store root.
// Layout: <root>/collections/<collectionID>/{vectors.hnsw,chunks.db}.
type Manager struct {
	root string

	mu   sync.Mutex
	open map[string]*Collection
}

// NewManager creates the store root if needed and returns a manager.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		return nil, deckerrors.New(deckerrors.ErrCodeConfigInvalid, "store root must not be empty", nil)
	}
	if err := os.MkdirAll(filepath.Join(root, "collections"), 0o755); err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return &Manager{root: root, open: make(map[string]*Collection)}, nil
}

func (m *Manager) collectionDir(id string) string {
	return filepath.Join(m.root, "collections", id)
}

// Exists reports whether a collection has been indexed before.
func (m *Manager) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(m.collectionDir(id), vectorsFile))
	return err == nil
}

// Open returns an existing collection, loading it from disk on first
// use. A collection that was never indexed yields ErrCodeNotIndexed.
func (m *Manager) Open(id string) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.open[id]; ok {
		return c, nil
	}

	dir := m.collectionDir(id)
	indexPath := filepath.Join(dir, vectorsFile)
	if _, err := os.Stat(indexPath); err != nil {
		return nil, deckerrors.NotIndexed(id)
	}

	vectors, err := LoadVectorIndex(indexPath)
	if err != nil {
		return nil, err
	}
	chunks, err := NewChunkStore(filepath.Join(dir, chunksFile))
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	c := &Collection{id: id, dir: dir, lock: newWriteLock(dir), vectors: vectors, chunks: chunks}
	m.open[id] = c
	return c, nil
}

// OpenOrCreate opens a collection, creating an empty one with the
// given vector dimension if it does not exist yet. Reopening with a
// different dimension is a dimension mismatch.
func (m *Manager) OpenOrCreate(id string, dimensions int) (*Collection, error) {
	c, err := m.Open(id)
	if err == nil {
		if c.Dimensions() != dimensions {
			return nil, deckerrors.New(deckerrors.ErrCodeDimensionMismatch,
				fmt.Sprintf("collection %s holds %d-dimensional vectors, embedder produces %d",
					id, c.Dimensions(), dimensions), nil)
		}
		return c, nil
	}
	if !deckerrors.HasCode(err, deckerrors.ErrCodeNotIndexed) {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.collectionDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	vectors, err := NewVectorIndex(IndexConfig{Dimensions: dimensions})
	if err != nil {
		return nil, err
	}
	chunks, err := NewChunkStore(filepath.Join(dir, chunksFile))
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	c = &Collection{id: id, dir: dir, lock: newWriteLock(dir), vectors: vectors, chunks: chunks}
	m.open[id] = c
	return c, nil
}

// Drop closes and deletes a collection. Dropping a collection that
// does not exist is a no-op.
func (m *Manager) Drop(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.open[id]; ok {
		if err := c.Close(); err != nil {
			slog.Warn("collection_close_failed",
				slog.String("collection", id),
				slog.String("error", err.Error()))
		}
		delete(m.open, id)
	}
	if err := os.RemoveAll(m.collectionDir(id)); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return nil
}

// List returns the IDs of all collections on disk, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.root, "collections"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes all open collections.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for id, c := range m.open {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.open, id)
	}
	return firstErr
}
