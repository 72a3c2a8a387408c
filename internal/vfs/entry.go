package vfs

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"livepreview/internal/resolver"
	"livepreview/internal/vpath"
)

// ConventionalEntries is the fallback search order when no entry point is set.
var ConventionalEntries = []string{
	"/src/main.tsx", "/src/main.ts", "/src/main.jsx", "/src/main.js",
	"/src/index.tsx", "/src/index.ts", "/src/index.jsx", "/src/index.js",
	"/main.tsx", "/main.ts",
	"/index.tsx", "/index.ts", "/index.jsx", "/index.js",
}

// HTMLDocument is the conventional host page consulted for a module script.
const HTMLDocument = "/index.html"

// SetEntryPoint sets or, with an empty path, clears the explicit entry point.
func (s *Store) SetEntryPoint(path string) {
	clean := ""
	if strings.TrimSpace(path) != "" {
		clean = vpath.Normalize(path)
	}
	s.mu.Lock()
	s.entryPoint = clean
	s.mu.Unlock()
	s.notify(ChangeEvent{Kind: ChangeEntry, Path: clean})
}

// EntryPoint returns the explicit entry point, if any.
func (s *Store) EntryPoint() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entryPoint, s.entryPoint != ""
}

// ResolveEntry picks the module the preview should boot: the explicit entry
// point, then ConventionalEntries, then the first module script of
// /index.html, then the first component-like file in path order.
func (s *Store) ResolveEntry() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entryPoint != "" {
		if _, ok := s.files[s.entryPoint]; ok {
			return s.entryPoint, true
		}
	}
	for _, p := range ConventionalEntries {
		if _, ok := s.files[p]; ok {
			return p, true
		}
	}
	if doc, ok := s.files[HTMLDocument]; ok {
		for _, src := range ModuleScripts(doc.Content) {
			res := resolver.Resolve(HTMLDocument, src, s.existsLocked)
			if res.Kind == resolver.Resolved {
				return res.Path, true
			}
		}
	}
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		if isComponentLike(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return "", false
	}
	sort.Strings(paths)
	return paths[0], true
}

// ModuleScripts returns the src attribute of every <script type="module"> in
// an HTML document, in document order.
func ModuleScripts(document string) []string {
	var out []string
	z := html.NewTokenizer(strings.NewReader(document))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "script" {
			continue
		}
		var typ, src string
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "type":
				typ = string(val)
			case "src":
				src = string(val)
			}
		}
		if typ == "module" && src != "" {
			out = append(out, src)
		}
	}
}
