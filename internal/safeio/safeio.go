// Package safeio confines file access to a directory tree. Paths are
// resolved through symlinks and rejected when they land outside the root.
package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrOutsideRoot = errors.New("safeio: path resolves outside root")

// Dir is a directory that reads and writes may not escape.
type Dir struct {
	absRoot string // absolute root with symlinks resolved
}

// Open binds a Dir to root, which must be an existing directory.
func Open(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: root is not a directory")
	}
	return &Dir{absRoot: abs}, nil
}

// MkdirOpen creates root if needed, then opens it.
func MkdirOpen(root string, perm fs.FileMode) (*Dir, error) {
	if err := os.MkdirAll(root, perm); err != nil {
		return nil, err
	}
	return Open(root)
}

func (d *Dir) Root() string {
	if d == nil {
		return ""
	}
	return d.absRoot
}

// Stat follows symlinks; rel uses "/" separators relative to the root.
func (d *Dir) Stat(rel string) (fs.FileInfo, error) {
	p, err := d.resolveExisting(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (d *Dir) ReadFile(rel string) ([]byte, error) {
	p, err := d.resolveExisting(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("safeio: path is a directory")
	}
	return os.ReadFile(p)
}

// WriteFile creates missing parent directories. The deepest existing
// ancestor must resolve inside the root, so a symlinked folder cannot
// redirect the write.
func (d *Dir) WriteFile(rel string, data []byte, perm fs.FileMode) error {
	p, err := d.resolveTarget(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if info, err := os.Lstat(p); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		if _, err := d.resolveExisting(rel); err != nil {
			return err
		}
	}
	return os.WriteFile(p, data, perm)
}

// Remove deletes rel. A missing file is not an error.
func (d *Dir) Remove(rel string) error {
	p, err := d.resolveTarget(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Dir) join(rel string) (string, error) {
	if d == nil {
		return "", errors.New("safeio: directory not configured")
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/\\")))
	if clean == "." || clean == "" {
		return "", errors.New("safeio: empty path")
	}
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return filepath.Join(d.absRoot, clean), nil
}

func (d *Dir) resolveExisting(rel string) (string, error) {
	joined, err := d.join(rel)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, d.absRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return resolved, nil
}

// resolveTarget checks the deepest existing ancestor of rel.
func (d *Dir) resolveTarget(rel string) (string, error) {
	joined, err := d.join(rel)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(joined)
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if !hasPathPrefix(resolved, d.absRoot) {
				return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
			}
			return joined, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path+sep, root)
}
