// Package runlock keeps two abwalk runs from encoding the same tree.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	coreerrors "github.com/five82/abwalk/internal/errors"
)

// Lock is an advisory lock held for one root directory.
type Lock struct {
	root string
	fl   *flock.Flock
}

// Acquire locks rootDir using a lock file in the system temp directory.
func Acquire(rootDir string) (*Lock, error) {
	return AcquireIn(os.TempDir(), rootDir)
}

// AcquireIn locks rootDir using a lock file in lockDir. It fails with a
// KindLocked error when another process holds the lock.
func AcquireIn(lockDir, rootDir string) (*Lock, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, coreerrors.NewIOError("resolve "+rootDir, err)
	}

	fl := flock.New(Path(lockDir, abs))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, coreerrors.NewIOError("acquire lock", err)
	}
	if !ok {
		return nil, coreerrors.NewLockedError(abs)
	}
	return &Lock{root: abs, fl: fl}, nil
}

// Path returns the lock file used for an absolute root directory.
func Path(lockDir, absRoot string) string {
	sum := sha256.Sum256([]byte(absRoot))
	return filepath.Join(lockDir, fmt.Sprintf("abwalk-%s.lock", hex.EncodeToString(sum[:8])))
}

// Root returns the locked directory.
func (l *Lock) Root() string {
	if l == nil {
		return ""
	}
	return l.root
}

// Release unlocks. The lock file is left in place for the next run.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
