package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps every snapshot in one JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("snapshot file path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	snap, err := prepare(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readLocked()
	if err != nil {
		return err
	}
	all[snap.WorkspaceID] = snap
	return s.writeLocked(all)
}

func (s *FileStore) Load(_ context.Context, workspaceID string) (Snapshot, error) {
	id, err := validateID(workspaceID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readLocked()
	if err != nil {
		return Snapshot{}, err
	}
	snap, ok := all[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for id := range all {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) readLocked() (map[string]Snapshot, error) {
	all := make(map[string]Snapshot)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	var rows []Snapshot
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode snapshots %s: %w", s.path, err)
	}
	for _, row := range rows {
		if id := strings.TrimSpace(row.WorkspaceID); id != "" {
			all[id] = row
		}
	}
	return all, nil
}

// writeLocked replaces the file through a rename so readers never see a
// partial document.
func (s *FileStore) writeLocked(all map[string]Snapshot) error {
	rows := make([]Snapshot, 0, len(all))
	for _, snap := range all {
		rows = append(rows, snap)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WorkspaceID < rows[j].WorkspaceID })

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	return os.Rename(tmp, s.path)
}
