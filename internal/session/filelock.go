package session

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrStoreBusy is returned when another process holds the session file
var ErrStoreBusy = errors.New("session file is in use by another process")

// LockFile takes the exclusive process lock of the session file at path.
// Every process that writes the file holds it, so a store has one writer.
// The lock is released by the returned function or when the process exits.
func LockFile(path string) (func(), error) {
	l := flock.New(path + ".lock")
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock session file: %w", err)
	}
	if !ok {
		return nil, ErrStoreBusy
	}
	return func() {
		if err := l.Unlock(); err != nil {
			log.Warnf("Failed to unlock session file: %v", err)
		}
	}, nil
}
