package flagged

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by Remove for an account with no index entry.
var ErrNotFound = errors.New("account not in flagged index")

// MemoryStore is an in-memory, thread-safe Store implementation. It is
// primarily useful for testing and for single-process deployments that do
// not require durable persistence across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]bool)}
}

// IsFlagged implements Index. Accounts with no entry are not flagged.
func (m *MemoryStore) IsFlagged(_ context.Context, accountID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[accountID], nil
}

// SetFlagged implements Store.
func (m *MemoryStore) SetFlagged(_ context.Context, accountID string, flagged bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[accountID] = flagged
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, accountID)
	return nil
}

// List implements Store. Returns flagged account ids in sorted order.
func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for id, f := range m.accounts {
		if f {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}
