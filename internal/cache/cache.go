// Package cache is a content-addressed result cache with TTL expiry.
// Keys are digests over the parameters that produced a result, so any
// parameter change addresses a different entry. Values are opaque
// strings, typically JSON. Entries expire lazily on read and can be
// swept in bulk.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// DefaultTTL keeps market and analysis results for a week.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a SQLite-backed TTL key-value store.
type Cache struct {
	mu     sync.Mutex
	db     *sql.DB
	ttl    time.Duration
	closed bool

	// now is swappable for expiry tests.
	now func() time.Time
}

// Stats summarizes cache occupancy at a point in time.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ExpiredEntries int `json:"expired_entries"`
	ValidEntries   int `json:"valid_entries"`
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
`

// New opens (or creates) the cache database at path. An empty path
// opens an in-memory cache. A non-positive TTL falls back to
// DefaultTTL.
func New(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, fmt.Errorf("set pragma: %w", err))
		}
	}

	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, fmt.Errorf("init schema: %w", err))
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Key derives the cache key for an ordered parameter tuple. Parameters
// are order- and case-sensitive; any difference yields a different key.
func Key(params ...string) string {
	digest := sha256.Sum256([]byte(strings.Join(params, "|")))
	return hex.EncodeToString(digest[:])
}

// Get returns the cached value for key. Expired entries are deleted on
// the spot and reported as misses. Storage failures also degrade to a
// miss so callers can recompute.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", false
	}

	var (
		value     string
		expiresAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM entries WHERE key = ?", key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		slog.Warn("cache_read_failed", slog.String("error", err.Error()))
		return "", false
	}

	if c.now().Unix() >= expiresAt {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key); err != nil {
			slog.Warn("cache_expire_delete_failed", slog.String("error", err.Error()))
		}
		return "", false
	}

	return value, true
}

// Put stores value under key with the cache TTL, replacing any
// existing entry.
func (c *Cache) Put(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	now := c.now()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO entries (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key, value, now.Unix(), now.Add(c.ttl).Unix())
	if err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}
	return nil
}

// Delete removes an entry. Deleting an absent key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("cache is closed")
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key); err != nil {
		return deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}
	return nil
}

// SweepExpired deletes all expired entries and returns how many were
// removed.
func (c *Cache) SweepExpired(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, fmt.Errorf("cache is closed")
	}

	res, err := c.db.ExecContext(ctx,
		"DELETE FROM entries WHERE expires_at <= ?", c.now().Unix())
	if err != nil {
		return 0, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}
	return int(n), nil
}

// CacheStats reports total, expired, and still-valid entry counts.
func (c *Cache) CacheStats(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Stats{}, fmt.Errorf("cache is closed")
	}

	var stats Stats
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM entries`, c.now().Unix()).Scan(&stats.TotalEntries, &stats.ExpiredEntries)
	if err != nil {
		return Stats{}, deckerrors.Wrap(deckerrors.ErrCodeCacheFailed, err)
	}
	stats.ValidEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}
