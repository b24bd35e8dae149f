package catalog

import "sync"

// keyedLocks hands out one RWMutex per (profile, library) scope.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.RWMutex)}
}

func (k *keyedLocks) get(profileID, libraryID string) *sync.RWMutex {
	key := profileID + "\x00" + libraryID

	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &sync.RWMutex{}
		k.locks[key] = l
	}
	return l
}
