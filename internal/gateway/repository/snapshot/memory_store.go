package snapshot

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	snap, err := prepare(snap)
	if err != nil {
		return err
	}
	snap.Files = slices.Clone(snap.Files)
	s.mu.Lock()
	s.data[snap.WorkspaceID] = snap
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, workspaceID string) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, fmt.Errorf("store is nil")
	}
	id, err := validateID(workspaceID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	snap, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap.Files = slices.Clone(snap.Files)
	return snap, nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	out := make([]string, 0, len(s.data))
	for id := range s.data {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}
