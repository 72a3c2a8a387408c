// Package workspacev1 defines the WorkspaceService wire messages. They are
// plain structs exchanged with connect's JSON codec.
package workspacev1

type File struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	Content      string `json:"content,omitempty"`
	Language     string `json:"language,omitempty"`
	LastModified int64  `json:"lastModified"`
	InContext    bool   `json:"inContext"`
}

type FileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type SetFilesRequest struct {
	Files []FileInput `json:"files"`
}

type SetFilesResponse struct {
	Files []File `json:"files"`
}

type UpsertFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type UpsertFileResponse struct {
	File File `json:"file"`
}

type DeleteFileRequest struct {
	Path string `json:"path"`
}

type DeleteFileResponse struct{}

type RenameFileRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RenameFileResponse struct {
	File File `json:"file"`
}

// SetEntryPointRequest clears the entry point when Path is empty.
type SetEntryPointRequest struct {
	Path string `json:"path"`
}

type SetEntryPointResponse struct {
	EntryPoint string `json:"entryPoint"`
}

type ToggleContextRequest struct {
	Path string `json:"path"`
}

type ToggleContextResponse struct {
	File File `json:"file"`
}

type ListFilesRequest struct {
	IncludeContent bool `json:"includeContent"`
}

type ListFilesResponse struct {
	Files      []File `json:"files"`
	EntryPoint string `json:"entryPoint,omitempty"`
}

type GetFileRequest struct {
	Path string `json:"path"`
}

type GetFileResponse struct {
	File File `json:"file"`
}

type GetDependencyGraphRequest struct{}

type GetDependencyGraphResponse struct {
	Edges map[string][]string `json:"edges"`
	Entry string              `json:"entry,omitempty"`
}

type GetImportMapRequest struct{}

type GetImportMapResponse struct {
	Imports map[string]string `json:"imports"`
}
