package batch

import (
	"fmt"

	"github.com/gofrs/flock"

	"addsubs/internal/services"
)

// LockFileName is the lock file kept inside the output directory.
const LockFileName = ".addsubs.lock"

// Locker guards an output directory against concurrent batches.
type Locker interface {
	Acquire(path string) (release func() error, err error)
}

// FileLocker takes a non-blocking flock on path.
type FileLocker struct{}

// Acquire returns ErrBatchLocked when another process holds the lock and
// ErrOutputDirectory when the lock file cannot be opened. The file stays in
// place after release; removing it would let two later batches lock
// different inodes at the same path.
func (FileLocker) Acquire(path string) (func() error, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrOutputDirectory, "lock", "open", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrBatchLocked, "lock", "acquire", "another addsubs batch is using "+path, nil)
	}
	return func() error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("release batch lock: %w", err)
		}
		return nil
	}, nil
}
