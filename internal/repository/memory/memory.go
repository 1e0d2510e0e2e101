// Package memory is a process-local SnapshotStore for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// SnapshotStore keeps blobs in a map.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[string][]byte)}
}

// Load returns a copy of the blob at key.
func (s *SnapshotStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, apperrors.NotFound("snapshot", key)
	}
	return slices.Clone(data), nil
}

// Save stores a copy of data at key.
func (s *SnapshotStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(data)
	return nil
}

// Len returns the number of stored keys.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
