package credential

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair in process memory. It is the stand-in for tests and
// short-lived tools that must not persist credentials.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetAccess implements Store.GetAccess.
func (s *MemoryStore) GetAccess(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.access, s.access != "", nil
}

// GetRefresh implements Store.GetRefresh.
func (s *MemoryStore) GetRefresh(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refresh, s.refresh != "", nil
}

// SetPair implements Store.SetPair.
func (s *MemoryStore) SetPair(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access, s.refresh = access, refresh

	return nil
}

// Clear implements Store.Clear.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access, s.refresh = "", ""

	return nil
}

// HasPair implements Store.HasPair.
func (s *MemoryStore) HasPair(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return hasPair(s.access, s.refresh), nil
}

// Close implements Store.Close.
func (s *MemoryStore) Close() error {
	return nil
}
