package router

import "sync"

// keyedLocker serializes work per key. The router uses it to make the
// pairwise score-increment-persist sequence atomic per reportee: sessions
// are already serialized per reporting user, but two reporters finishing
// reports against the same account would otherwise race on its report count.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	m       sync.Mutex
	waiters int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key and returns the unlock function. Entries
// are dropped once the last holder releases, so the map does not grow with
// the set of keys ever seen.
func (l *keyedLocker) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.waiters++
	l.mu.Unlock()

	e.m.Lock()
	return func() {
		e.m.Unlock()
		l.mu.Lock()
		e.waiters--
		if e.waiters == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
