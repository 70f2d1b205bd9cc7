package collapse

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps collapse state in a map. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	state map[string][]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string][]string)}
}

func (s *MemoryStore) Get(ctx context.Context, treeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.state[treeID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(ids), nil
}

func (s *MemoryStore) Set(ctx context.Context, treeID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[treeID] = Normalize(ids)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, treeID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
