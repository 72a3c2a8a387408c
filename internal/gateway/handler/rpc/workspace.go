package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	workspacev1 "livepreview/internal/gateway/api/workspacev1"
	"livepreview/internal/gateway/service/workspace"
)

type WorkspaceHandler struct {
	svc *workspace.Service
}

func NewWorkspaceHandler(svc *workspace.Service) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

var _ workspacev1.WorkspaceServiceHandler = (*WorkspaceHandler)(nil)

func (h *WorkspaceHandler) SetFiles(_ context.Context, req *connect.Request[workspacev1.SetFilesRequest]) (*connect.Response[workspacev1.SetFilesResponse], error) {
	in := make([]workspace.FileInput, 0, len(req.Msg.Files))
	for _, f := range req.Msg.Files {
		in = append(in, workspace.FileInput{Path: f.Path, Content: f.Content})
	}
	files := h.svc.SetFiles(in)
	return connect.NewResponse(&workspacev1.SetFilesResponse{Files: toAPIFiles(files, false)}), nil
}

func (h *WorkspaceHandler) UpsertFile(_ context.Context, req *connect.Request[workspacev1.UpsertFileRequest]) (*connect.Response[workspacev1.UpsertFileResponse], error) {
	f, err := h.svc.UpsertFile(req.Msg.Path, req.Msg.Content)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&workspacev1.UpsertFileResponse{File: toAPIFile(f, false)}), nil
}

func (h *WorkspaceHandler) DeleteFile(_ context.Context, req *connect.Request[workspacev1.DeleteFileRequest]) (*connect.Response[workspacev1.DeleteFileResponse], error) {
	if err := h.svc.DeleteFile(req.Msg.Path); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&workspacev1.DeleteFileResponse{}), nil
}

func (h *WorkspaceHandler) RenameFile(_ context.Context, req *connect.Request[workspacev1.RenameFileRequest]) (*connect.Response[workspacev1.RenameFileResponse], error) {
	f, err := h.svc.RenameFile(req.Msg.From, req.Msg.To)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&workspacev1.RenameFileResponse{File: toAPIFile(f, false)}), nil
}

func (h *WorkspaceHandler) SetEntryPoint(_ context.Context, req *connect.Request[workspacev1.SetEntryPointRequest]) (*connect.Response[workspacev1.SetEntryPointResponse], error) {
	if err := h.svc.SetEntryPoint(req.Msg.Path); err != nil {
		return nil, toConnectError(err)
	}
	ep, _ := h.svc.Store().EntryPoint()
	return connect.NewResponse(&workspacev1.SetEntryPointResponse{EntryPoint: ep}), nil
}

func (h *WorkspaceHandler) ToggleContext(_ context.Context, req *connect.Request[workspacev1.ToggleContextRequest]) (*connect.Response[workspacev1.ToggleContextResponse], error) {
	f, err := h.svc.ToggleContext(req.Msg.Path)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&workspacev1.ToggleContextResponse{File: toAPIFile(f, false)}), nil
}

func (h *WorkspaceHandler) ListFiles(_ context.Context, req *connect.Request[workspacev1.ListFilesRequest]) (*connect.Response[workspacev1.ListFilesResponse], error) {
	ep, _ := h.svc.Store().EntryPoint()
	return connect.NewResponse(&workspacev1.ListFilesResponse{
		Files:      toAPIFiles(h.svc.ListFiles(), req.Msg.IncludeContent),
		EntryPoint: ep,
	}), nil
}

func (h *WorkspaceHandler) GetFile(_ context.Context, req *connect.Request[workspacev1.GetFileRequest]) (*connect.Response[workspacev1.GetFileResponse], error) {
	f, err := h.svc.GetFile(req.Msg.Path)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&workspacev1.GetFileResponse{File: toAPIFile(f, true)}), nil
}

func (h *WorkspaceHandler) GetDependencyGraph(_ context.Context, _ *connect.Request[workspacev1.GetDependencyGraphRequest]) (*connect.Response[workspacev1.GetDependencyGraphResponse], error) {
	edges, entry := h.svc.DependencyGraph()
	return connect.NewResponse(&workspacev1.GetDependencyGraphResponse{Edges: edges, Entry: entry}), nil
}

func (h *WorkspaceHandler) GetImportMap(_ context.Context, _ *connect.Request[workspacev1.GetImportMapRequest]) (*connect.Response[workspacev1.GetImportMapResponse], error) {
	m := h.svc.ImportMap()
	return connect.NewResponse(&workspacev1.GetImportMapResponse{Imports: m.Imports}), nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, workspace.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, workspace.ErrFileNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, workspace.ErrPathTaken):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
