package cache

import "sync"

// MemoryStore is an in-process Store for one-shot runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryStore) Set(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List() ([]KeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]KeyInfo, 0, len(s.entries))
	for k, e := range s.entries {
		infos = append(infos, KeyInfo{Key: k, SavedAt: e.SavedAt})
	}
	return infos, nil
}
