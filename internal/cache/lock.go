package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// buildLock serializes index builds across processes so two instances
// pointed at the same cache directory never write the same artifact
// concurrently.
type buildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// newBuildLock creates a lock rooted at <dir>/.build.lock.
func newBuildLock(dir string) *buildLock {
	lockPath := filepath.Join(dir, ".build.lock")
	return &buildLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires an exclusive lock, blocking until available.
func (l *buildLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked buildLock.
func (l *buildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release build lock: %w", err)
	}
	return nil
}
