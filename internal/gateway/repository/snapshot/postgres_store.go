package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS workspace_snapshots (
    workspace_id TEXT PRIMARY KEY,
    entry_point TEXT NOT NULL DEFAULT '',
    files JSONB NOT NULL DEFAULT '[]'::jsonb,
    saved_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	snap, err := prepare(snap)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	files, err := json.Marshal(snap.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO workspace_snapshots (workspace_id, entry_point, files, saved_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (workspace_id)
DO UPDATE SET entry_point=EXCLUDED.entry_point, files=EXCLUDED.files, saved_at=EXCLUDED.saved_at
`, snap.WorkspaceID, snap.EntryPoint, files, snap.SavedAt)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, workspaceID string) (Snapshot, error) {
	id, err := validateID(workspaceID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{WorkspaceID: id}
	var files []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT entry_point, files, saved_at FROM workspace_snapshots WHERE workspace_id=$1`, id,
	).Scan(&snap.EntryPoint, &files, &snap.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal(files, &snap.Files); err != nil {
		return Snapshot{}, fmt.Errorf("decode files for %s: %w", id, err)
	}
	return snap, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT workspace_id FROM workspace_snapshots ORDER BY workspace_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
