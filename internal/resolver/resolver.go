// Package resolver maps import specifiers to workspace file paths.
package resolver

import (
	"livepreview/internal/vpath"
)

// Extensions are probed in this order, first as suffixes and then as
// index.<ext> inside a directory.
var Extensions = []string{".ts", ".tsx", ".js", ".jsx", ".json", ".css"}

type Kind uint8

const (
	// Resolved means Path names an existing workspace file.
	Resolved Kind = iota
	// External means the specifier is a bare package name left to the import map.
	External
	// Missing means the specifier is local but no candidate exists. Path holds
	// the normalized absolute candidate.
	Missing
)

func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case External:
		return "external"
	case Missing:
		return "missing"
	}
	return "unknown"
}

type Result struct {
	Kind Kind
	Path string
}

// Lookup reports whether a normalized path exists in the workspace.
type Lookup func(path string) bool

// Resolve resolves specifier as imported from importerPath. Probing order is
// exact path, path plus each extension, then path/index plus each extension.
func Resolve(importerPath, specifier string, exists Lookup) Result {
	if !vpath.IsLocal(specifier) {
		return Result{Kind: External}
	}
	var absolute string
	if len(specifier) > 0 && specifier[0] == '/' {
		absolute = vpath.Normalize(specifier)
	} else {
		absolute = vpath.Join(vpath.Dirname(importerPath), specifier)
	}
	if exists == nil {
		return Result{Kind: Missing, Path: absolute}
	}
	for _, candidate := range Candidates(absolute) {
		if exists(candidate) {
			return Result{Kind: Resolved, Path: candidate}
		}
	}
	return Result{Kind: Missing, Path: absolute}
}

// Candidates lists the probe order for an absolute base path.
func Candidates(absolute string) []string {
	out := make([]string, 0, 1+2*len(Extensions))
	out = append(out, absolute)
	for _, ext := range Extensions {
		out = append(out, absolute+ext)
	}
	for _, ext := range Extensions {
		out = append(out, vpath.Join(absolute, "index"+ext))
	}
	return out
}
