package reportlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLog is an in-memory, thread-safe Log implementation for tests and
// single-process deployments without a database.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryLog creates an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append implements Log. The entry's ID and CreatedAt are assigned here.
func (l *MemoryLog) Append(_ context.Context, e *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	cp := *e
	l.entries = append(l.entries, &cp)
	return nil
}

// List implements Log. Entries are returned newest first.
func (l *MemoryLog) List(_ context.Context, limit, offset int) ([]*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}

	var out []*Entry
	for i := len(l.entries) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *l.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}
