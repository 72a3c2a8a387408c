package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"livepreview/internal/vfs"
)

// Snapshot is the persisted form of one workspace.
type Snapshot struct {
	WorkspaceID string            `json:"workspaceId"`
	Files       []vfs.VirtualFile `json:"files"`
	EntryPoint  string            `json:"entryPoint,omitempty"`
	SavedAt     time.Time         `json:"savedAt"`
}

// Store persists workspace snapshots keyed by workspace id.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, workspaceID string) (Snapshot, error)
	List(ctx context.Context) ([]string, error)
}

var ErrNotFound = errors.New("snapshot not found")

func validateID(workspaceID string) (string, error) {
	id := strings.TrimSpace(workspaceID)
	if id == "" {
		return "", fmt.Errorf("workspace_id is required")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("workspace_id %q must not contain path separators", id)
	}
	return id, nil
}

func prepare(snap Snapshot) (Snapshot, error) {
	id, err := validateID(snap.WorkspaceID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.WorkspaceID = id
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	if snap.Files == nil {
		snap.Files = []vfs.VirtualFile{}
	}
	return snap, nil
}
