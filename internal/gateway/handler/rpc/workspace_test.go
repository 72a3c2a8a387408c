package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workspacev1 "livepreview/internal/gateway/api/workspacev1"
	"livepreview/internal/gateway/service/workspace"
	"livepreview/internal/importmap"
	"livepreview/internal/preview/bridge"
	"livepreview/internal/vfs"
)

func newWorkspaceClient(t *testing.T) (*workspacev1.WorkspaceServiceClient, *workspace.Service) {
	t.Helper()
	svc := workspace.New("rpc-test", vfs.NewStore(), nil, importmap.NewBuilder(importmap.Options{}))
	mux := http.NewServeMux()
	mux.Handle(workspacev1.NewWorkspaceServiceHandler(NewWorkspaceHandler(svc)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return workspacev1.NewWorkspaceServiceClient(srv.Client(), srv.URL), svc
}

func TestWorkspaceRPCRoundTrip(t *testing.T) {
	client, _ := newWorkspaceClient(t)
	ctx := context.Background()

	set, err := client.SetFiles(ctx, connect.NewRequest(&workspacev1.SetFilesRequest{Files: []workspacev1.FileInput{
		{Path: "app/src/main.tsx", Content: "import App from './App'"},
		{Path: "app/src/App.tsx", Content: "export default () => null"},
		{Path: "app/package.json", Content: `{"dependencies":{"zod":"^3.0.0"}}`},
	}}))
	require.NoError(t, err)
	require.Len(t, set.Msg.Files, 3)
	assert.Empty(t, set.Msg.Files[0].Content, "listings omit content")

	up, err := client.UpsertFile(ctx, connect.NewRequest(&workspacev1.UpsertFileRequest{Path: "src/util.ts", Content: "export const x = 1"}))
	require.NoError(t, err)
	assert.Equal(t, "/src/util.ts", up.Msg.File.Path)
	assert.Equal(t, "util.ts", up.Msg.File.Name)

	got, err := client.GetFile(ctx, connect.NewRequest(&workspacev1.GetFileRequest{Path: "/src/util.ts"}))
	require.NoError(t, err)
	assert.Equal(t, "export const x = 1", got.Msg.File.Content)

	ep, err := client.SetEntryPoint(ctx, connect.NewRequest(&workspacev1.SetEntryPointRequest{Path: "/src/main.tsx"}))
	require.NoError(t, err)
	assert.Equal(t, "/src/main.tsx", ep.Msg.EntryPoint)

	graph, err := client.GetDependencyGraph(ctx, connect.NewRequest(&workspacev1.GetDependencyGraphRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "/src/main.tsx", graph.Msg.Entry)
	assert.Equal(t, []string{"/src/App.tsx"}, graph.Msg.Edges["/src/main.tsx"])

	imports, err := client.GetImportMap(ctx, connect.NewRequest(&workspacev1.GetImportMapRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "https://esm.sh/zod@3.0.0?external=react,react-dom", imports.Msg.Imports["zod"])

	renamed, err := client.RenameFile(ctx, connect.NewRequest(&workspacev1.RenameFileRequest{From: "/src/util.ts", To: "/src/lib/util.ts"}))
	require.NoError(t, err)
	assert.Equal(t, "/src/lib/util.ts", renamed.Msg.File.Path)

	toggled, err := client.ToggleContext(ctx, connect.NewRequest(&workspacev1.ToggleContextRequest{Path: "/src/lib/util.ts"}))
	require.NoError(t, err)
	assert.False(t, toggled.Msg.File.InContext)

	_, err = client.DeleteFile(ctx, connect.NewRequest(&workspacev1.DeleteFileRequest{Path: "/src/lib/util.ts"}))
	require.NoError(t, err)

	list, err := client.ListFiles(ctx, connect.NewRequest(&workspacev1.ListFilesRequest{IncludeContent: true}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Files, 3)
	assert.Equal(t, "/src/main.tsx", list.Msg.EntryPoint)
	for _, f := range list.Msg.Files {
		assert.NotEmpty(t, f.Content, f.Path)
	}
}

func TestWorkspaceRPCErrorCodes(t *testing.T) {
	client, svc := newWorkspaceClient(t)
	ctx := context.Background()
	_, _ = svc.UpsertFile("/a.ts", "a")
	_, _ = svc.UpsertFile("/b.ts", "b")

	cases := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"empty path", func() error {
			_, err := client.UpsertFile(ctx, connect.NewRequest(&workspacev1.UpsertFileRequest{Path: "  "}))
			return err
		}, connect.CodeInvalidArgument},
		{"missing file", func() error {
			_, err := client.GetFile(ctx, connect.NewRequest(&workspacev1.GetFileRequest{Path: "/nope.ts"}))
			return err
		}, connect.CodeNotFound},
		{"missing delete", func() error {
			_, err := client.DeleteFile(ctx, connect.NewRequest(&workspacev1.DeleteFileRequest{Path: "/nope.ts"}))
			return err
		}, connect.CodeNotFound},
		{"rename onto existing", func() error {
			_, err := client.RenameFile(ctx, connect.NewRequest(&workspacev1.RenameFileRequest{From: "/a.ts", To: "/b.ts"}))
			return err
		}, connect.CodeAlreadyExists},
		{"unknown entry", func() error {
			_, err := client.SetEntryPoint(ctx, connect.NewRequest(&workspacev1.SetEntryPointRequest{Path: "/nope.ts"}))
			return err
		}, connect.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.Equal(t, tc.want, connect.CodeOf(err))
		})
	}
}

func TestBridgeHandlerAttachesDocumentContext(t *testing.T) {
	client := bridge.NewClient(time.Second)
	store := vfs.NewStore()
	store.Upsert("/src/a.ts", "export const a = 1")

	srv := httptest.NewServer(http.HandlerFunc(NewBridgeHandler(client).HandleBridgeWS))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	go func() { _ = bridge.DialHost(ctx, url, bridge.NewHost(store)) }()

	require.Eventually(t, client.Connected, time.Second, 5*time.Millisecond)
	f, err := client.RequestFile(ctx, "/src/a")
	require.NoError(t, err)
	assert.Equal(t, "/src/a.ts", f.Path)
}
