package report

import "testing"

func TestStoreRemoveDropsLock(t *testing.T) {
	s := NewStore()

	for _, id := range []string{"u1", "u2", "u3"} {
		unlock := s.Lock(id)
		s.Put(id, NewSession(nil, id, id))
		s.Remove(id)
		unlock()
	}

	if got := len(s.locks); got != 0 {
		t.Errorf("locks retained after Remove = %d, want 0", got)
	}
	if got := s.Len(); got != 0 {
		t.Errorf("entries retained after Remove = %d, want 0", got)
	}
}
