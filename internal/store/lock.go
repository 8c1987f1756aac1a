package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// writeLock guards a collection directory against concurrent writers
// from other processes. Reads go unlocked; WAL mode and the atomic
// index rename keep them consistent.
type writeLock struct {
	flock  *flock.Flock
	locked bool
}

func newWriteLock(dir string) *writeLock {
	return &writeLock{flock: flock.New(filepath.Join(dir, ".write.lock"))}
}

// Lock blocks until the exclusive lock is acquired.
func (l *writeLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *writeLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release write lock: %w", err)
	}
	return nil
}
