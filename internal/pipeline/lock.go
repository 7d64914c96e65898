package pipeline

import (
	"github.com/gofrs/flock"

	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/logging"
)

// acquireLock takes the exclusive run lock without blocking. A second run
// against the same manifest fails fast with ErrLocked instead of queueing
// behind the first.
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.NewLockError(path, err)
	}
	if !ok {
		return nil, errors.NewLockError(path, errors.ErrLocked)
	}
	return lock, nil
}

func releaseLock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		logging.Warn().Err(err).Str("path", lock.Path()).Msg("releasing run lock")
	}
}
