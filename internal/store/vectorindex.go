package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// VectorIndex is an in-memory HNSW graph with disk persistence.
// Chunk IDs are strings; the graph wants uint64 keys, so the index
// maintains the mapping in both directions. Deletion is lazy: removed
// IDs are dropped from the mapping and their nodes stay in the graph
// as orphans that never surface in results.
type VectorIndex struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config IndexConfig

	idToKey map[string]uint64
	keyToID map[uint64]string
	nextKey uint64

	closed bool
}

// indexMetadata is the gob-persisted companion of the exported graph.
type indexMetadata struct {
	IDToKey map[string]uint64
	NextKey uint64
	Config  IndexConfig
}

// NewVectorIndex creates an empty index with the given configuration.
func NewVectorIndex(cfg IndexConfig) (*VectorIndex, error) {
	if cfg.Dimensions <= 0 {
		return nil, deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("vector index dimensions must be positive, got %d", cfg.Dimensions), nil)
	}
	if cfg.Metric == "" {
		cfg.Metric = "cos"
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	switch cfg.Metric {
	case "l2":
		graph.Distance = hnsw.EuclideanDistance
	default:
		graph.Distance = hnsw.CosineDistance
	}
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &VectorIndex{
		graph:   graph,
		config:  cfg,
		idToKey: make(map[string]uint64),
		keyToID: make(map[uint64]string),
	}, nil
}

// Add inserts vectors under their IDs. Re-adding an existing ID
// orphans the old node and inserts a fresh one.
func (x *VectorIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors)), nil)
	}
	if len(ids) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return fmt.Errorf("vector index is closed")
	}

	for _, v := range vectors {
		if len(v) != x.config.Dimensions {
			return deckerrors.New(deckerrors.ErrCodeDimensionMismatch,
				fmt.Sprintf("expected %d dimensions, got %d", x.config.Dimensions, len(v)), nil)
		}
	}

	for i, id := range ids {
		if oldKey, exists := x.idToKey[id]; exists {
			// Lazy replacement: deleting nodes from coder/hnsw can
			// corrupt the graph when the last node goes, so the old
			// node is orphaned instead.
			delete(x.keyToID, oldKey)
			delete(x.idToKey, id)
		}

		key := x.nextKey
		x.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		if x.config.Metric == "cos" {
			normalizeInPlace(vec)
		}

		x.graph.Add(hnsw.MakeNode(key, vec))
		x.idToKey[id] = key
		x.keyToID[key] = id
	}

	return nil
}

// Search returns up to k nearest IDs with distances, nearest first.
// Orphaned nodes are filtered out.
func (x *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, fmt.Errorf("vector index is closed")
	}
	if len(query) != x.config.Dimensions {
		return nil, deckerrors.New(deckerrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("expected %d dimensions, got %d", x.config.Dimensions, len(query)), nil)
	}
	if x.graph.Len() == 0 || k <= 0 {
		return []Hit{}, nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	if x.config.Metric == "cos" {
		normalizeInPlace(q)
	}

	nodes := x.graph.Search(q, k)

	hits := make([]Hit, 0, len(nodes))
	for _, node := range nodes {
		id, live := x.keyToID[node.Key]
		if !live {
			continue
		}
		distance := x.graph.Distance(q, node.Value)
		hits = append(hits, Hit{
			ID:       id,
			Distance: distance,
			Score:    distanceToScore(distance, x.config.Metric),
		})
	}
	return hits, nil
}

// Delete removes IDs from the mapping. Graph nodes stay behind as
// orphans.
func (x *VectorIndex) Delete(ctx context.Context, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return fmt.Errorf("vector index is closed")
	}
	for _, id := range ids {
		if key, exists := x.idToKey[id]; exists {
			delete(x.keyToID, key)
			delete(x.idToKey, id)
		}
	}
	return nil
}

// Contains reports whether an ID is live in the index.
func (x *VectorIndex) Contains(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.idToKey[id]
	return ok
}

// Count returns the number of live vectors.
func (x *VectorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idToKey)
}

// Dimensions returns the configured vector dimension.
func (x *VectorIndex) Dimensions() int {
	return x.config.Dimensions
}

// Save persists the graph and ID mapping next to each other,
// <path> and <path>.meta, each written to a temp file and renamed.
func (x *VectorIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return fmt.Errorf("vector index is closed")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := x.graph.Export(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename index file: %w", err)
	}

	return x.saveMetadata(path + ".meta")
}

func (x *VectorIndex) saveMetadata(path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}

	meta := indexMetadata{
		IDToKey: x.idToKey,
		NextKey: x.nextKey,
		Config:  x.config,
	}
	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close metadata file: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadVectorIndex restores an index previously written by Save.
func LoadVectorIndex(path string) (*VectorIndex, error) {
	meta, err := readIndexMetadata(path + ".meta")
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeCorruptIndex, err)
	}

	x, err := NewVectorIndex(meta.Config)
	if err != nil {
		return nil, err
	}
	x.idToKey = meta.IDToKey
	x.nextKey = meta.NextKey
	for id, key := range x.idToKey {
		x.keyToID[key] = id
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeCorruptIndex, err)
	}
	defer func() { _ = file.Close() }()

	// graph.Import needs an io.ByteReader.
	if err := x.graph.Import(bufio.NewReader(file)); err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeCorruptIndex, fmt.Errorf("import graph: %w", err))
	}
	return x, nil
}

func readIndexMetadata(path string) (indexMetadata, error) {
	var meta indexMetadata

	file, err := os.Open(path)
	if err != nil {
		return meta, fmt.Errorf("open metadata file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := gob.NewDecoder(file).Decode(&meta); err != nil {
		return meta, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// Close drops the graph. The index must not be used afterwards.
func (x *VectorIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	x.graph = nil
	return nil
}
