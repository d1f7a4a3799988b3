// Package tasklock serializes mutations of a task's working files.
//
// The daemon and the segment editing CLI commands both touch the staging
// directory of a task; a per-task flock makes sure only one writer does so at
// a time.
package tasklock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another process holds the task lock.
var ErrHeld = errors.New("task is locked by another process")

// Lock is an exclusive, file-backed lock for one task.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for the given task, failing fast with ErrHeld when
// another process owns it.
func Acquire(lockDir string, taskID int64) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(lockDir, fmt.Sprintf("task-%d.lock", taskID))
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire task lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrHeld)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release task lock: %w", err)
	}
	return nil
}
