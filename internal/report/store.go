package report

import (
	"sync"
	"time"
)

// storeEntry holds one user's session and activity timestamp.
type storeEntry struct {
	sess       *Session
	lastActive time.Time
}

// Store owns the active report sessions, keyed by reporting-user id. At
// most one session exists per user; sessions are created when a report
// starts and removed when they complete. Lock serializes advancement of a
// given user's session across concurrent handlers.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
	locks   map[string]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*storeEntry),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Lock acquires the per-user mutex and returns the unlock function. Callers
// must hold the lock for the whole get/advance/remove sequence.
func (s *Store) Lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Get returns the user's active session, if any.
func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return nil, false
	}
	e.lastActive = time.Now()
	return e.sess, true
}

// Put stores the user's session, replacing any existing one.
func (s *Store) Put(userID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = &storeEntry{sess: sess, lastActive: time.Now()}
}

// Remove evicts the user's session and its lock. Callers hold the lock
// through the whole get/advance/remove sequence, so dropping the entry here
// cannot release it under a concurrent holder.
func (s *Store) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	delete(s.locks, userID)
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EvictIdle removes sessions idle for longer than maxIdle and returns how
// many were removed. Sessions have no timeout by themselves; hosts that
// want one can call this from a janitor loop.
func (s *Store) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if time.Since(e.lastActive) > maxIdle {
			delete(s.entries, id)
			delete(s.locks, id)
			n++
		}
	}
	return n
}
