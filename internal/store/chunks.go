package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/deckforge/deckforge/internal/chunk"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// ChunkStore holds chunk text and metadata in SQLite, keyed by chunk
// ID. The vector index only knows IDs; this is where search hits are
// joined back to their content.
type ChunkStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

const chunkSchema = `
CREATE TABLE IF NOT EXISTS chunks (
	id   TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	meta TEXT NOT NULL
);
`

// NewChunkStore opens (or creates) the chunk database at path. An
// empty path opens an in-memory database for tests.
func NewChunkStore(path string) (*ChunkStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	// Single writer keeps SQLite lock contention out of the picture.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// modernc.org/sqlite ignores DSN pragma params; set them explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, fmt.Errorf("set pragma: %w", err))
		}
	}

	if _, err := db.Exec(chunkSchema); err != nil {
		_ = db.Close()
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, fmt.Errorf("init schema: %w", err))
	}

	return &ChunkStore{db: db, path: path}, nil
}

// Put upserts chunks in a single transaction.
func (s *ChunkStore) Put(ctx context.Context, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("chunk store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, text, meta) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text, meta = excluded.meta`)
	if err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Meta)
		if err != nil {
			return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, fmt.Errorf("marshal metadata for %s: %w", c.ID, err))
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Text, string(meta)); err != nil {
			return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return nil
}

// Get returns the chunks for the given IDs in the order requested.
// IDs with no stored chunk are skipped.
func (s *ChunkStore) Get(ctx context.Context, ids []string) ([]chunk.Chunk, error) {
	if len(ids) == 0 {
		return []chunk.Chunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("chunk store is closed")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, meta FROM chunks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[string]chunk.Chunk, len(ids))
	for rows.Next() {
		var (
			c        chunk.Chunk
			metaJSON string
		)
		if err := rows.Scan(&c.ID, &c.Text, &metaJSON); err != nil {
			return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &c.Meta); err != nil {
			return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, fmt.Errorf("unmarshal metadata for %s: %w", c.ID, err))
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	out := make([]chunk.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("chunk store is closed")
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return n, nil
}

// Clear removes all stored chunks.
func (s *ChunkStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("chunk store is closed")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *ChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
