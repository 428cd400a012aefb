package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the data directory.
var ErrLocked = errors.New("data directory is in use by another process")

// DirLock is an advisory single-writer lock on a data directory.
type DirLock struct {
	lock *flock.Flock
}

// LockDir acquires <dir>/nutrilog.lock without blocking.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	lockPath := filepath.Join(dir, "nutrilog.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return &DirLock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *DirLock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}

// Unlock releases the lock. It is safe to call more than once.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
