package intent

import "sync"

// Slot holds the last finalized DesignIntent so that follow-ups like "make
// it thicker" have something to apply to. It keeps exactly one value; any
// history is the caller's business.
//
// Merge is a read-compute-replace under one lock. Concurrent merges from
// different sessions are serialized but not otherwise reconciled, so callers
// that run several sessions should give each its own Slot.
type Slot struct {
	mu  sync.Mutex
	cur *DesignIntent
}

// Get returns a copy of the held intent.
func (s *Slot) Get() (DesignIntent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return DesignIntent{}, false
	}
	return s.cur.Clone(), true
}

// Set replaces the held intent with a copy of d.
func (s *Slot) Set(d DesignIntent) {
	c := d.Clone()
	s.mu.Lock()
	s.cur = &c
	s.mu.Unlock()
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}

// Merge applies delta to the held intent, stores the result, and returns it.
// An empty slot merges onto a fresh box intent at revision 1.
func (s *Slot) Merge(delta Delta) DesignIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.next(delta)
	s.cur = &next
	return next.Clone()
}

// Preview is Merge without storing the result. Callers that may still fail
// after merging Set the result once they have succeeded.
func (s *Slot) Preview(delta Delta) DesignIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next(delta)
}

func (s *Slot) next(delta Delta) DesignIntent {
	if s.cur != nil {
		return s.cur.Apply(delta)
	}
	base := NewDesignIntent(string(Box))
	base.Revision = 0
	return base.Apply(delta)
}
