package curation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/purestream711/PureStream-sub004/internal/hash"
)

// profileLock serializes runs for one profile across processes.
type profileLock struct {
	fl *flock.Flock
}

// lockPath keeps a readable id in the file name and appends a digest of the
// raw id, so ids that sanitize alike still get distinct locks.
func lockPath(dir, profileID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, profileID)
	return filepath.Join(dir, "curate-"+safe+"-"+hash.Short(profileID)+".lock")
}

// acquireProfileLock takes the lock without waiting. A held lock yields ErrBusy.
func acquireProfileLock(dir, profileID string) (*profileLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(lockPath(dir, profileID))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return &profileLock{fl: fl}, nil
}

func (l *profileLock) release() error {
	return l.fl.Unlock()
}
