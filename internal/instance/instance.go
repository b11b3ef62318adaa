// Package instance holds the single-instance lock for the controller.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockName = "polychromatic-controller.lock"

// ErrAlreadyRunning reports that another controller process holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock owns the on-disk lock file for the lifetime of the session.
type Lock struct {
	fl *flock.Flock
}

// RuntimeDir returns the directory the lock file lives in, preferring the
// user runtime directory when the session provides one.
func RuntimeDir(getenv func(string) string) string {
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Acquire takes the controller lock inside dir without blocking.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, lockName)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock so another controller can start.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}
