package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"livepreview/internal/safeio"
	"livepreview/internal/vfs"
	"livepreview/internal/vpath"
)

const (
	maxFileSize   = 2 << 20
	readerLimit   = 8
	mirrorDirPerm = 0o755
)

var (
	ignoredDirs  = map[string]bool{"node_modules": true, ".git": true, "dist": true, "build": true, ".vscode": true, ".idea": true, "coverage": true}
	ignoredFiles = map[string]bool{".DS_Store": true, "yarn.lock": true, "package-lock.json": true, "pnpm-lock.yaml": true}
	binaryExts   = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".svg": true, ".woff": true,
		".woff2": true, ".ttf": true, ".eot": true, ".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
		".pdf": true, ".zip": true, ".exe": true, ".dll": true, ".so": true, ".dylib": true,
	}
)

// LoadDir reads the text files under dir concurrently. Dependency folders,
// lockfiles and binary files are skipped.
func LoadDir(ctx context.Context, dir string) ([]vfs.VirtualFile, error) {
	d, err := safeio.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	root := d.Root()
	var rels []string
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if p != root && ignoredDirs[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || ignoredFiles[entry.Name()] || binaryExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	files := make([]vfs.VirtualFile, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readerLimit)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := d.Stat(rel)
			if err != nil {
				return fmt.Errorf("stat %s: %w", rel, err)
			}
			if info.Size() > maxFileSize {
				return nil
			}
			b, err := d.ReadFile(rel)
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			if bytes.IndexByte(b, 0) >= 0 {
				return nil
			}
			files[i] = vfs.VirtualFile{
				Path:         vpath.Normalize(rel),
				Content:      string(b),
				LastModified: info.ModTime().UnixMilli(),
				InContext:    true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := files[:0]
	for _, f := range files {
		if f.Path != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

// MountDir replaces the workspace with the contents of dir.
func (s *Service) MountDir(ctx context.Context, dir string) error {
	files, err := LoadDir(ctx, dir)
	if err != nil {
		return err
	}
	s.store.SetAll(files)
	s.log.WithFields(logrus.Fields{"dir": dir, "files": len(files)}).Info("workspace mounted")
	return nil
}

// MirrorToDir writes every subsequent file change back into dir, creating
// it if needed. A reset of the whole workspace rewrites every file and
// removes the mirrored ones that are gone. The returned func stops mirroring.
func (s *Service) MirrorToDir(dir string) (func(), error) {
	d, err := safeio.MkdirOpen(dir, mirrorDirPerm)
	if err != nil {
		return nil, fmt.Errorf("open mirror dir: %w", err)
	}
	m := &mirror{store: s.store, dir: d, written: make(map[string]struct{})}
	for _, f := range s.store.List() {
		m.written[f.Path] = struct{}{}
	}
	log := s.log.WithField("dir", d.Root())
	return s.store.Subscribe(func(ev vfs.ChangeEvent) {
		if err := m.apply(ev); err != nil {
			log.WithError(err).WithField("path", ev.Path).Warn("mirror write failed")
		}
	}), nil
}

// mirror tracks which workspace paths it has on disk so a reset can prune
// files that no longer exist.
type mirror struct {
	mu      sync.Mutex
	store   *vfs.Store
	dir     *safeio.Dir
	written map[string]struct{}
}

func (m *mirror) apply(ev vfs.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch ev.Kind {
	case vfs.ChangeUpsert:
		return m.write(ev.Path)
	case vfs.ChangeRemove:
		return m.remove(ev.Path)
	case vfs.ChangeRename:
		if err := m.write(ev.Path); err != nil {
			return err
		}
		return m.remove(ev.OldPath)
	case vfs.ChangeReset:
		return m.resync()
	}
	return nil
}

func (m *mirror) resync() error {
	var errs []error
	current := make(map[string]struct{})
	for _, f := range m.store.List() {
		current[f.Path] = struct{}{}
		if err := m.writeFile(f); err != nil {
			errs = append(errs, err)
		}
	}
	for p := range m.written {
		if _, ok := current[p]; ok {
			continue
		}
		if err := m.remove(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *mirror) write(path string) error {
	f, ok := m.store.Get(path)
	if !ok {
		return nil
	}
	return m.writeFile(f)
}

func (m *mirror) writeFile(f vfs.VirtualFile) error {
	if err := m.dir.WriteFile(f.Path, []byte(f.Content), 0o644); err != nil {
		return err
	}
	m.written[f.Path] = struct{}{}
	return nil
}

func (m *mirror) remove(path string) error {
	if err := m.dir.Remove(path); err != nil {
		return err
	}
	delete(m.written, path)
	return nil
}
