package cache

import (
	"github.com/gofrs/flock"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// Lock is an exclusive, process-external lock on one cache key, held
// across the build-and-finalize phase only. A cache hit never takes it.
//
// The lock is an advisory file lock tied to file-descriptor lifetime,
// so the OS releases it when the holder dies; no heartbeat protocol is
// needed. Locks for different keys live in different files and never
// contend.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock blocks until the lock at path is held. There is no
// implicit timeout: builds are long-running and an artificial deadline
// would fail spuriously under legitimate contention. Callers wanting a
// timeout wrap the call.
func AcquireLock(path string) (*Lock, error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, &artifact.LockError{Path: path, Err: err}
	}

	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call exactly once; callers defer it
// immediately after acquisition so no exit path can leak the lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return &artifact.LockError{Path: l.fl.Path(), Err: err}
	}

	return nil
}
