package vfs

import (
	"strings"

	"livepreview/internal/vpath"
)

// VirtualFile is one workspace file keyed by its normalized absolute path.
type VirtualFile struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	Language     string `json:"language,omitempty"`
	LastModified int64  `json:"lastModified"`
	InContext    bool   `json:"inContext"`
}

var languageByExt = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".json": "json",
	".css":  "css",
	".html": "html",
	".md":   "markdown",
	".svg":  "xml",
}

// LanguageFor guesses an editor language hint from the path extension.
func LanguageFor(path string) string {
	return languageByExt[strings.ToLower(vpath.Ext(path))]
}

// IsScript reports whether path is compiled before being served.
func IsScript(path string) bool {
	switch strings.ToLower(vpath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs":
		return true
	}
	return false
}

func isComponentLike(path string) bool {
	switch strings.ToLower(vpath.Ext(path)) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}
