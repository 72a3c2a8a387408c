package workspacev1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const WorkspaceServiceName = "livepreview.v1.WorkspaceService"

const (
	WorkspaceServiceSetFilesProcedure           = "/livepreview.v1.WorkspaceService/SetFiles"
	WorkspaceServiceUpsertFileProcedure         = "/livepreview.v1.WorkspaceService/UpsertFile"
	WorkspaceServiceDeleteFileProcedure         = "/livepreview.v1.WorkspaceService/DeleteFile"
	WorkspaceServiceRenameFileProcedure         = "/livepreview.v1.WorkspaceService/RenameFile"
	WorkspaceServiceSetEntryPointProcedure      = "/livepreview.v1.WorkspaceService/SetEntryPoint"
	WorkspaceServiceToggleContextProcedure      = "/livepreview.v1.WorkspaceService/ToggleContext"
	WorkspaceServiceListFilesProcedure          = "/livepreview.v1.WorkspaceService/ListFiles"
	WorkspaceServiceGetFileProcedure            = "/livepreview.v1.WorkspaceService/GetFile"
	WorkspaceServiceGetDependencyGraphProcedure = "/livepreview.v1.WorkspaceService/GetDependencyGraph"
	WorkspaceServiceGetImportMapProcedure       = "/livepreview.v1.WorkspaceService/GetImportMap"
)

// JSONCodec replaces connect's protobuf JSON codec so plain structs can be
// used as messages.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

type WorkspaceServiceHandler interface {
	SetFiles(context.Context, *connect.Request[SetFilesRequest]) (*connect.Response[SetFilesResponse], error)
	UpsertFile(context.Context, *connect.Request[UpsertFileRequest]) (*connect.Response[UpsertFileResponse], error)
	DeleteFile(context.Context, *connect.Request[DeleteFileRequest]) (*connect.Response[DeleteFileResponse], error)
	RenameFile(context.Context, *connect.Request[RenameFileRequest]) (*connect.Response[RenameFileResponse], error)
	SetEntryPoint(context.Context, *connect.Request[SetEntryPointRequest]) (*connect.Response[SetEntryPointResponse], error)
	ToggleContext(context.Context, *connect.Request[ToggleContextRequest]) (*connect.Response[ToggleContextResponse], error)
	ListFiles(context.Context, *connect.Request[ListFilesRequest]) (*connect.Response[ListFilesResponse], error)
	GetFile(context.Context, *connect.Request[GetFileRequest]) (*connect.Response[GetFileResponse], error)
	GetDependencyGraph(context.Context, *connect.Request[GetDependencyGraphRequest]) (*connect.Response[GetDependencyGraphResponse], error)
	GetImportMap(context.Context, *connect.Request[GetImportMapRequest]) (*connect.Response[GetImportMapResponse], error)
}

// NewWorkspaceServiceHandler returns the mount path and handler for svc.
func NewWorkspaceServiceHandler(svc WorkspaceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(WorkspaceServiceSetFilesProcedure, connect.NewUnaryHandler(WorkspaceServiceSetFilesProcedure, svc.SetFiles, opts...))
	mux.Handle(WorkspaceServiceUpsertFileProcedure, connect.NewUnaryHandler(WorkspaceServiceUpsertFileProcedure, svc.UpsertFile, opts...))
	mux.Handle(WorkspaceServiceDeleteFileProcedure, connect.NewUnaryHandler(WorkspaceServiceDeleteFileProcedure, svc.DeleteFile, opts...))
	mux.Handle(WorkspaceServiceRenameFileProcedure, connect.NewUnaryHandler(WorkspaceServiceRenameFileProcedure, svc.RenameFile, opts...))
	mux.Handle(WorkspaceServiceSetEntryPointProcedure, connect.NewUnaryHandler(WorkspaceServiceSetEntryPointProcedure, svc.SetEntryPoint, opts...))
	mux.Handle(WorkspaceServiceToggleContextProcedure, connect.NewUnaryHandler(WorkspaceServiceToggleContextProcedure, svc.ToggleContext, opts...))
	mux.Handle(WorkspaceServiceListFilesProcedure, connect.NewUnaryHandler(WorkspaceServiceListFilesProcedure, svc.ListFiles, opts...))
	mux.Handle(WorkspaceServiceGetFileProcedure, connect.NewUnaryHandler(WorkspaceServiceGetFileProcedure, svc.GetFile, opts...))
	mux.Handle(WorkspaceServiceGetDependencyGraphProcedure, connect.NewUnaryHandler(WorkspaceServiceGetDependencyGraphProcedure, svc.GetDependencyGraph, opts...))
	mux.Handle(WorkspaceServiceGetImportMapProcedure, connect.NewUnaryHandler(WorkspaceServiceGetImportMapProcedure, svc.GetImportMap, opts...))
	return "/" + WorkspaceServiceName + "/", mux
}

type WorkspaceServiceClient struct {
	setFiles           *connect.Client[SetFilesRequest, SetFilesResponse]
	upsertFile         *connect.Client[UpsertFileRequest, UpsertFileResponse]
	deleteFile         *connect.Client[DeleteFileRequest, DeleteFileResponse]
	renameFile         *connect.Client[RenameFileRequest, RenameFileResponse]
	setEntryPoint      *connect.Client[SetEntryPointRequest, SetEntryPointResponse]
	toggleContext      *connect.Client[ToggleContextRequest, ToggleContextResponse]
	listFiles          *connect.Client[ListFilesRequest, ListFilesResponse]
	getFile            *connect.Client[GetFileRequest, GetFileResponse]
	getDependencyGraph *connect.Client[GetDependencyGraphRequest, GetDependencyGraphResponse]
	getImportMap       *connect.Client[GetImportMapRequest, GetImportMapResponse]
}

func NewWorkspaceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *WorkspaceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &WorkspaceServiceClient{
		setFiles:           connect.NewClient[SetFilesRequest, SetFilesResponse](httpClient, baseURL+WorkspaceServiceSetFilesProcedure, opts...),
		upsertFile:         connect.NewClient[UpsertFileRequest, UpsertFileResponse](httpClient, baseURL+WorkspaceServiceUpsertFileProcedure, opts...),
		deleteFile:         connect.NewClient[DeleteFileRequest, DeleteFileResponse](httpClient, baseURL+WorkspaceServiceDeleteFileProcedure, opts...),
		renameFile:         connect.NewClient[RenameFileRequest, RenameFileResponse](httpClient, baseURL+WorkspaceServiceRenameFileProcedure, opts...),
		setEntryPoint:      connect.NewClient[SetEntryPointRequest, SetEntryPointResponse](httpClient, baseURL+WorkspaceServiceSetEntryPointProcedure, opts...),
		toggleContext:      connect.NewClient[ToggleContextRequest, ToggleContextResponse](httpClient, baseURL+WorkspaceServiceToggleContextProcedure, opts...),
		listFiles:          connect.NewClient[ListFilesRequest, ListFilesResponse](httpClient, baseURL+WorkspaceServiceListFilesProcedure, opts...),
		getFile:            connect.NewClient[GetFileRequest, GetFileResponse](httpClient, baseURL+WorkspaceServiceGetFileProcedure, opts...),
		getDependencyGraph: connect.NewClient[GetDependencyGraphRequest, GetDependencyGraphResponse](httpClient, baseURL+WorkspaceServiceGetDependencyGraphProcedure, opts...),
		getImportMap:       connect.NewClient[GetImportMapRequest, GetImportMapResponse](httpClient, baseURL+WorkspaceServiceGetImportMapProcedure, opts...),
	}
}

func (c *WorkspaceServiceClient) SetFiles(ctx context.Context, req *connect.Request[SetFilesRequest]) (*connect.Response[SetFilesResponse], error) {
	return c.setFiles.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) UpsertFile(ctx context.Context, req *connect.Request[UpsertFileRequest]) (*connect.Response[UpsertFileResponse], error) {
	return c.upsertFile.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) DeleteFile(ctx context.Context, req *connect.Request[DeleteFileRequest]) (*connect.Response[DeleteFileResponse], error) {
	return c.deleteFile.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) RenameFile(ctx context.Context, req *connect.Request[RenameFileRequest]) (*connect.Response[RenameFileResponse], error) {
	return c.renameFile.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) SetEntryPoint(ctx context.Context, req *connect.Request[SetEntryPointRequest]) (*connect.Response[SetEntryPointResponse], error) {
	return c.setEntryPoint.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) ToggleContext(ctx context.Context, req *connect.Request[ToggleContextRequest]) (*connect.Response[ToggleContextResponse], error) {
	return c.toggleContext.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) ListFiles(ctx context.Context, req *connect.Request[ListFilesRequest]) (*connect.Response[ListFilesResponse], error) {
	return c.listFiles.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) GetFile(ctx context.Context, req *connect.Request[GetFileRequest]) (*connect.Response[GetFileResponse], error) {
	return c.getFile.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) GetDependencyGraph(ctx context.Context, req *connect.Request[GetDependencyGraphRequest]) (*connect.Response[GetDependencyGraphResponse], error) {
	return c.getDependencyGraph.CallUnary(ctx, req)
}

func (c *WorkspaceServiceClient) GetImportMap(ctx context.Context, req *connect.Request[GetImportMapRequest]) (*connect.Response[GetImportMapResponse], error) {
	return c.getImportMap.CallUnary(ctx, req)
}
