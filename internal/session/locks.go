// internal/session/locks.go
//
// Per-(game,user) mutual exclusion for the guess sequence.
// Each key owns its own mutex so concurrent guesses against different
// sessions never block each other, while two guesses for the same session
// serialize their read-check-write sequence.

package session

import "sync"

type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for key, creating it on first use. Session locks
// are never removed; the key space is bounded by active (game,user) pairs.
func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}
