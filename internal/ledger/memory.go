package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps the entry in memory.
type MemoryStore struct {
	mu     sync.Mutex
	entry  Entry
	record bool
	saves  int
}

// NewMemoryStore returns a store with a package record holding e.
func NewMemoryStore(e Entry) *MemoryStore {
	return &MemoryStore{entry: e, record: true}
}

// NewMemoryStoreWithoutRecord returns a store that behaves like a project
// where the package is not installed as a dependency.
func NewMemoryStoreWithoutRecord() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.record {
		return Entry{}, false, nil
	}
	return s.entry, true, nil
}

// Save replaces the entry.
func (s *MemoryStore) Save(ctx context.Context, e Entry) error {
	return s.Update(ctx, func(cur *Entry) bool {
		*cur = e
		return true
	})
}

func (s *MemoryStore) Update(ctx context.Context, mutate func(e *Entry) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.record {
		return ErrRecordNotFound
	}
	e := s.entry
	if !mutate(&e) {
		return nil
	}
	s.entry = e
	s.saves++
	return nil
}

// Saves returns how many writes succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
