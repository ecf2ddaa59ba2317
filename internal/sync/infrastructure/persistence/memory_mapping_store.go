package persistence

import (
	"context"
	"sync"

	"github.com/patrolabs/patro/internal/sync/domain"
)

// MemoryMappingStore is an in-memory MappingStore for local mode and
// tests. Entries do not survive restarts.
type MemoryMappingStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryMappingStore creates an empty in-memory mapping store.
func NewMemoryMappingStore() *MemoryMappingStore {
	return &MemoryMappingStore{entries: make(map[string]string)}
}

// Get returns the external ID stored under key.
func (s *MemoryMappingStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	externalID, ok := s.entries[key]
	if !ok {
		return "", domain.ErrMappingNotFound
	}
	return externalID, nil
}

// Upsert stores the external ID under key.
func (s *MemoryMappingStore) Upsert(ctx context.Context, key, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = externalID
	return nil
}

// Delete removes the entry for key.
func (s *MemoryMappingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// All returns a snapshot of every stored entry.
func (s *MemoryMappingStore) All(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = v
	}
	return snapshot, nil
}
