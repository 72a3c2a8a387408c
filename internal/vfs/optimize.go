package vfs

import (
	"strings"

	"livepreview/internal/vpath"
)

var junkMarkers = []string{"__MACOSX", ".DS_Store", "/.git/", "/node_modules/"}

// OptimizeImported normalizes imported paths, drops archive and VCS noise, and
// hoists a single top-level directory shared by every file to the root.
func OptimizeImported(files []VirtualFile) []VirtualFile {
	clean := make([]VirtualFile, 0, len(files))
	for _, f := range files {
		f.Path = vpath.Normalize(f.Path)
		if f.Path == "/" || isJunk(f.Path) {
			continue
		}
		clean = append(clean, f)
	}
	if len(clean) == 0 {
		return clean
	}

	first := strings.Split(strings.TrimPrefix(clean[0].Path, "/"), "/")
	if len(first) < 2 {
		return clean
	}
	root := "/" + first[0] + "/"
	for _, f := range clean {
		if !strings.HasPrefix(f.Path, root) {
			return clean
		}
	}
	for i := range clean {
		clean[i].Path = vpath.Normalize(strings.TrimPrefix(clean[i].Path, root))
		clean[i].Name = vpath.Base(clean[i].Path)
	}
	return clean
}

func isJunk(p string) bool {
	for _, m := range junkMarkers {
		if strings.Contains(p+"/", m) {
			return true
		}
	}
	return false
}
