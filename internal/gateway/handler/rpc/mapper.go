package rpc

import (
	workspacev1 "livepreview/internal/gateway/api/workspacev1"
	"livepreview/internal/vfs"
)

func toAPIFile(f vfs.VirtualFile, withContent bool) workspacev1.File {
	out := workspacev1.File{
		ID:           f.ID,
		Path:         f.Path,
		Name:         f.Name,
		Language:     f.Language,
		LastModified: f.LastModified,
		InContext:    f.InContext,
	}
	if withContent {
		out.Content = f.Content
	}
	return out
}

func toAPIFiles(files []vfs.VirtualFile, withContent bool) []workspacev1.File {
	out := make([]workspacev1.File, 0, len(files))
	for _, f := range files {
		out = append(out, toAPIFile(f, withContent))
	}
	return out
}
