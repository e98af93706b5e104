package fileutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrExists is returned when a write would replace a file and overwrite is off.
var ErrExists = errors.New("file already exists")

const lockRetryDelay = 50 * time.Millisecond

// WriteOptions controls WriteFileAtomic.
type WriteOptions struct {
	Mode      os.FileMode
	Overwrite bool
	// LockDir holds the advisory lock files. Empty places the lock beside the
	// target.
	LockDir string
}

// LockPath returns the advisory lock file guarding writes to path. Inside
// lockDir the name carries a digest of the absolute target so different
// directories with the same file name do not share a lock.
func LockPath(lockDir, path string) string {
	base := filepath.Base(path)
	if lockDir == "" {
		return filepath.Join(filepath.Dir(path), "."+base+".lock")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, base+"-"+hex.EncodeToString(sum[:6])+".lock")
}

// CheckAbsent returns ErrExists for the first path that already exists.
func CheckAbsent(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place while holding the lock from LockPath. Concurrent writers to the same
// path wait for the lock until ctx is done.
func WriteFileAtomic(ctx context.Context, path string, data []byte, opts WriteOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	if opts.LockDir != "" {
		if err := os.MkdirAll(opts.LockDir, 0o755); err != nil {
			return fmt.Errorf("create lock directory %q: %w", opts.LockDir, err)
		}
	}

	lockPath := LockPath(opts.LockDir, path)
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("acquire lock %s: not acquired", lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	if !opts.Overwrite {
		if err := CheckAbsent(path); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
