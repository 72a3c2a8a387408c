package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livepreview/internal/gateway/repository/snapshot"
	"livepreview/internal/importmap"
	"livepreview/internal/vfs"
)

func newService(t *testing.T, repo snapshot.Store) *Service {
	t.Helper()
	return New("ws-test", vfs.NewStore(), repo, importmap.NewBuilder(importmap.Options{}))
}

func TestRestoreSeedsTemplateWhenUnknown(t *testing.T) {
	svc := newService(t, snapshot.NewMemoryStore())
	require.NoError(t, svc.Restore(context.Background(), true))

	_, err := svc.GetFile("/src/App.tsx")
	require.NoError(t, err)
	graph, entry := svc.DependencyGraph()
	assert.Equal(t, "/src/index.tsx", entry)
	assert.Equal(t, []string{"/src/App.tsx", "/src/index.css"}, graph["/src/index.tsx"])

	m := svc.ImportMap()
	assert.Contains(t, m.Imports, "lucide-react")
	assert.Equal(t, "https://esm.sh/react@"+importmap.DefaultReactVersion, m.Imports["react"])
}

func TestRestoreLoadsSnapshot(t *testing.T) {
	repo := snapshot.NewMemoryStore()
	require.NoError(t, repo.Save(context.Background(), snapshot.Snapshot{
		WorkspaceID: "ws-test",
		EntryPoint:  "/app.ts",
		Files:       []vfs.VirtualFile{{Path: "/app.ts", Content: "export {}"}},
	}))

	svc := newService(t, repo)
	require.NoError(t, svc.Restore(context.Background(), true))
	assert.Len(t, svc.ListFiles(), 1)
	ep, ok := svc.Store().EntryPoint()
	require.True(t, ok)
	assert.Equal(t, "/app.ts", ep)
}

func TestRestoreWithoutSeedLeavesEmpty(t *testing.T) {
	svc := newService(t, nil)
	require.NoError(t, svc.Restore(context.Background(), false))
	assert.Empty(t, svc.ListFiles())
}

func TestMutationErrors(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.UpsertFile(" ", "x")
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	assert.True(t, errors.Is(svc.DeleteFile("/nope.ts"), ErrFileNotFound))
	assert.True(t, errors.Is(svc.SetEntryPoint("/nope.ts"), ErrFileNotFound))
	_, err = svc.ToggleContext("/nope.ts")
	assert.True(t, errors.Is(err, ErrFileNotFound))

	_, err = svc.UpsertFile("/a.ts", "a")
	require.NoError(t, err)
	_, err = svc.UpsertFile("/b.ts", "b")
	require.NoError(t, err)
	_, err = svc.RenameFile("/a.ts", "/b.ts")
	assert.True(t, errors.Is(err, ErrPathTaken))
	_, err = svc.RenameFile("/x.ts", "/y.ts")
	assert.True(t, errors.Is(err, ErrFileNotFound))

	require.NoError(t, svc.SetEntryPoint("/a.ts"))
	require.NoError(t, svc.SetEntryPoint(""))
}

func TestSetFilesOptimizesImportedTree(t *testing.T) {
	svc := newService(t, nil)
	files := svc.SetFiles([]FileInput{
		{Path: "project/src/main.ts", Content: "1"},
		{Path: "project/index.html", Content: "2"},
		{Path: "__MACOSX/project/._main.ts", Content: "junk"},
		{Path: "", Content: "ignored"},
	})
	require.Len(t, files, 2)
	assert.Equal(t, "/index.html", files[0].Path)
	assert.Equal(t, "/src/main.ts", files[1].Path)
}

func TestAutosaveDebouncesAndFlushes(t *testing.T) {
	repo := snapshot.NewMemoryStore()
	svc := newService(t, repo)
	stop := svc.StartAutosave(context.Background(), 20*time.Millisecond)

	_, _ = svc.UpsertFile("/a.ts", "1")
	_, _ = svc.UpsertFile("/b.ts", "2")
	require.Eventually(t, func() bool {
		snap, err := repo.Load(context.Background(), "ws-test")
		return err == nil && len(snap.Files) == 2
	}, time.Second, 5*time.Millisecond)

	stop2 := svc.StartAutosave(context.Background(), time.Hour)
	stop()
	_, _ = svc.UpsertFile("/c.ts", "3")
	stop2()

	snap, err := repo.Load(context.Background(), "ws-test")
	require.NoError(t, err)
	assert.Len(t, snap.Files, 3, "stop flushes pending changes")
}

func TestLoadDirSkipsNoise(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	write("src/main.tsx", "import './App'")
	write("src/App.tsx", "export default 1")
	write("node_modules/react/index.js", "nope")
	write(".git/HEAD", "ref")
	write("package-lock.json", "{}")
	write("logo.png", "png")
	write("blob.txt", "a\x00b")

	files, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"/src/main.tsx", "/src/App.tsx"}, paths)

	svc := newService(t, nil)
	require.NoError(t, svc.MountDir(context.Background(), dir))
	assert.Equal(t, []string{"/src/App.tsx"}, svc.Store().Dependencies("/src/main.tsx"))

	_, err = LoadDir(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestMirrorToDir(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, nil)
	stop, err := svc.MirrorToDir(dir)
	require.NoError(t, err)
	defer stop()

	_, err = svc.UpsertFile("/src/a.ts", "A")
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(b))

	_, err = svc.RenameFile("/src/a.ts", "/lib/b.ts")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "src", "a.ts"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "lib", "b.ts"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile("/lib/b.ts"))
	_, err = os.Stat(filepath.Join(dir, "lib", "b.ts"))
	assert.True(t, os.IsNotExist(err))

	_, err = svc.UpsertFile("/src/old.ts", "old")
	require.NoError(t, err)
	svc.SetFiles([]FileInput{{Path: "/src/main.tsx", Content: "X"}})
	b, err = os.ReadFile(filepath.Join(dir, "src", "main.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "X", string(b))
	_, err = os.Stat(filepath.Join(dir, "src", "old.ts"))
	assert.True(t, os.IsNotExist(err), "reset prunes files that left the workspace")
}

func TestMirrorToDirResetPrunesMountedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "gone.ts"), []byte("g"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte("{}"), 0o644))

	svc := newService(t, nil)
	require.NoError(t, svc.MountDir(context.Background(), dir))
	stop, err := svc.MirrorToDir(dir)
	require.NoError(t, err)
	defer stop()

	svc.Store().SetAll([]vfs.VirtualFile{{Path: "/src/kept.ts", Content: "k"}})

	b, err := os.ReadFile(filepath.Join(dir, "src", "kept.ts"))
	require.NoError(t, err)
	assert.Equal(t, "k", string(b))
	_, err = os.Stat(filepath.Join(dir, "src", "gone.ts"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "package-lock.json"))
	assert.NoError(t, err, "files never loaded into the workspace are left alone")
}
