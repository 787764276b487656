package account

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a directory lookup misses.
var ErrNotFound = errors.New("account not found")

// Directory looks up account descriptors by display name. The moderation
// core uses it to fetch reporter and reportee descriptors for pairwise
// scoring; the backing store is an external collaborator.
type Directory interface {
	Get(ctx context.Context, name string) (*Descriptor, error)
	Save(ctx context.Context, d *Descriptor) error
}

// MemoryDirectory is a thread-safe in-memory Directory, for tests and
// single-process deployments without a backing account store.
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]*Descriptor
}

// NewMemoryDirectory creates an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{accounts: make(map[string]*Descriptor)}
}

// Get implements Directory.
func (m *MemoryDirectory) Get(_ context.Context, name string) (*Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.accounts[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Save implements Directory. Last write wins.
func (m *MemoryDirectory) Save(_ context.Context, d *Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[d.Name] = d
	return nil
}
