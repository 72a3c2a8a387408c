package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirReadWriteRemove(t *testing.T) {
	d, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.WriteFile("/src/deep/a.ts", []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := d.ReadFile("src/deep/a.ts")
	if err != nil || string(b) != "hello" {
		t.Fatalf("ReadFile = %q, %v", b, err)
	}
	if err := d.Remove("src/deep/a.ts"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := d.Remove("src/deep/a.ts"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if _, err := d.Stat("src/deep/a.ts"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Stat after remove: %v", err)
	}
}

func TestDirRejectsTraversal(t *testing.T) {
	d, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, p := range []string{"../x", "a/../../x", ""} {
		if err := d.WriteFile(p, nil, 0o644); err == nil {
			t.Fatalf("WriteFile(%q) succeeded", p)
		}
	}
}

func TestDirRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret"), []byte("s"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	d, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := d.ReadFile("link/secret"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("ReadFile through symlink: %v", err)
	}
	if err := d.WriteFile("link/new/file", []byte("x"), 0o644); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("WriteFile through symlink: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "new")); !os.IsNotExist(err) {
		t.Fatalf("write escaped root: %v", err)
	}
}

func TestOpenRequiresDirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(f); err == nil {
		t.Fatal("Open on a file succeeded")
	}
	if _, err := Open(""); err == nil {
		t.Fatal("Open with empty root succeeded")
	}
}
