// Package workspace owns the document-side workspace: the file store, its
// persistence and the optional on-disk mirror.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"livepreview/internal/gateway/repository/snapshot"
	"livepreview/internal/importmap"
	"livepreview/internal/vfs"
	"livepreview/internal/vpath"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFileNotFound    = errors.New("file not found")
	ErrPathTaken       = errors.New("target path already exists")
)

type Service struct {
	id    string
	store *vfs.Store
	repo  snapshot.Store
	maps  *importmap.Builder
	log   *logrus.Entry
}

// New wraps store. repo may be nil when persistence is disabled.
func New(id string, store *vfs.Store, repo snapshot.Store, maps *importmap.Builder) *Service {
	id = strings.TrimSpace(id)
	if id == "" {
		id = "default"
	}
	return &Service{
		id:    id,
		store: store,
		repo:  repo,
		maps:  maps,
		log:   logrus.WithFields(logrus.Fields{"component": "workspace", "workspace_id": id}),
	}
}

func (s *Service) ID() string        { return s.id }
func (s *Service) Store() *vfs.Store { return s.store }

// Restore loads the last snapshot. An unknown workspace is seeded with the
// default template; seed controls whether an empty one is too.
func (s *Service) Restore(ctx context.Context, seed bool) error {
	if s.repo != nil {
		snap, err := s.repo.Load(ctx, s.id)
		switch {
		case err == nil:
			s.store.SetAll(snap.Files)
			if snap.EntryPoint != "" {
				s.store.SetEntryPoint(snap.EntryPoint)
			}
			s.log.WithField("files", len(snap.Files)).Info("workspace restored")
			return nil
		case !errors.Is(err, snapshot.ErrNotFound):
			return fmt.Errorf("load snapshot: %w", err)
		}
	}
	if seed && s.store.Len() == 0 {
		s.store.SetAll(DefaultTemplate())
		s.log.Info("workspace seeded from template")
	}
	return nil
}

// Save writes the current workspace to the snapshot repository.
func (s *Service) Save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	ep, _ := s.store.EntryPoint()
	return s.repo.Save(ctx, snapshot.Snapshot{
		WorkspaceID: s.id,
		Files:       s.store.List(),
		EntryPoint:  ep,
		SavedAt:     time.Now().UTC(),
	})
}

type FileInput struct {
	Path    string
	Content string
}

// SetFiles replaces the workspace. Imported trees are cleaned of archive
// noise and a shared top-level folder.
func (s *Service) SetFiles(files []FileInput) []vfs.VirtualFile {
	in := make([]vfs.VirtualFile, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.Path) == "" {
			continue
		}
		in = append(in, vfs.VirtualFile{Path: f.Path, Content: f.Content, InContext: true})
	}
	s.store.SetAll(vfs.OptimizeImported(in))
	return s.store.List()
}

func (s *Service) UpsertFile(path, content string) (vfs.VirtualFile, error) {
	if err := requirePath(path); err != nil {
		return vfs.VirtualFile{}, err
	}
	return s.store.Upsert(path, content), nil
}

func (s *Service) DeleteFile(path string) error {
	if err := requirePath(path); err != nil {
		return err
	}
	if !s.store.Remove(path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, vpath.Normalize(path))
	}
	return nil
}

func (s *Service) RenameFile(from, to string) (vfs.VirtualFile, error) {
	if err := requirePath(from); err != nil {
		return vfs.VirtualFile{}, err
	}
	if err := requirePath(to); err != nil {
		return vfs.VirtualFile{}, err
	}
	if _, ok := s.store.Get(from); !ok {
		return vfs.VirtualFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, vpath.Normalize(from))
	}
	f, ok := s.store.Rename(from, to)
	if !ok {
		return vfs.VirtualFile{}, fmt.Errorf("%w: %s", ErrPathTaken, vpath.Normalize(to))
	}
	return f, nil
}

// SetEntryPoint sets the entry point; an empty path clears it.
func (s *Service) SetEntryPoint(path string) error {
	if strings.TrimSpace(path) != "" && !s.store.Exists(path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, vpath.Normalize(path))
	}
	s.store.SetEntryPoint(path)
	return nil
}

func (s *Service) ToggleContext(path string) (vfs.VirtualFile, error) {
	f, ok := s.store.ToggleContext(path)
	if !ok {
		return vfs.VirtualFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, vpath.Normalize(path))
	}
	return f, nil
}

func (s *Service) ListFiles() []vfs.VirtualFile { return s.store.List() }

func (s *Service) GetFile(path string) (vfs.VirtualFile, error) {
	f, ok := s.store.Get(path)
	if !ok {
		return vfs.VirtualFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, vpath.Normalize(path))
	}
	return f, nil
}

// DependencyGraph returns the import graph and the entry the preview boots.
func (s *Service) DependencyGraph() (map[string][]string, string) {
	entry, _ := s.store.ResolveEntry()
	return s.store.Graph(), entry
}

// ImportMap builds the import map for the workspace manifest.
func (s *Service) ImportMap() importmap.ImportMap {
	var raw []byte
	if f, ok := s.store.Get(importmap.ManifestPath); ok {
		raw = []byte(f.Content)
	}
	return s.maps.BuildFromManifest(raw)
}

func requirePath(p string) error {
	if strings.TrimSpace(p) == "" || vpath.Normalize(p) == "/" {
		return fmt.Errorf("%w: path is required", ErrInvalidArgument)
	}
	return nil
}
