package mirror

import (
	"context"
	"sync"
)

// MemoryStore is the in-process mirror backend, used by default and in
// tests. Contents vanish with the process.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) TryRead(_ context.Context, key string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	return state, ok
}

func (s *MemoryStore) Write(_ context.Context, key string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key] = state
}

func (s *MemoryStore) Close() error {
	return nil
}
