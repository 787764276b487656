package report_test

import (
	"sync"
	"testing"
	"time"

	"github.com/modsentry/modsentry/internal/report"
)

func TestStore_lifecycle(t *testing.T) {
	store := report.NewStore()

	if _, ok := store.Get("u1"); ok {
		t.Fatal("empty store should not return a session")
	}

	sess := newSession()
	store.Put("u1", sess)
	got, ok := store.Get("u1")
	if !ok || got != sess {
		t.Fatal("Get should return the stored session")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}

	store.Remove("u1")
	if _, ok := store.Get("u1"); ok {
		t.Error("session should be gone after Remove")
	}
}

func TestStore_lockSerializesPerUser(t *testing.T) {
	store := report.NewStore()
	var (
		inCritical bool
		mu         sync.Mutex
		wg         sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("u1")
			defer unlock()

			mu.Lock()
			if inCritical {
				t.Error("two goroutines in critical section for same user")
			}
			inCritical = true
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical = false
			mu.Unlock()
		}()
	}
	wg.Wait()
}

func TestStore_evictIdle(t *testing.T) {
	store := report.NewStore()
	store.Put("u1", newSession())

	if n := store.EvictIdle(time.Hour); n != 0 {
		t.Errorf("EvictIdle(1h) = %d, want 0", n)
	}
	if n := store.EvictIdle(0); n != 1 {
		t.Errorf("EvictIdle(0) = %d, want 1", n)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d after eviction, want 0", store.Len())
	}
}
