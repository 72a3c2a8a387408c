package vfs

import (
	"slices"
	"sort"

	"livepreview/internal/jsimport"
	"livepreview/internal/resolver"
	"livepreview/internal/vpath"
)

// Dependencies returns the resolved local imports of path.
func (s *Store) Dependencies(path string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.graph[vpath.Normalize(path)]...)
}

// Dependents returns the files whose resolved imports include path.
func (s *Store) Dependents(path string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dependentsLocked(vpath.Normalize(path))
}

// Graph returns a copy of the importer -> importees map.
func (s *Store) Graph() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.graph))
	for k, v := range s.graph {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ResolveImports maps every local specifier of the file at path to its
// resolved workspace path. Missing targets map to their normalized candidate.
func (s *Store) ResolveImports(path string) map[string]string {
	clean := vpath.Normalize(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[clean]
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, spec := range jsimport.Specifiers(f.Content) {
		res := resolver.Resolve(clean, spec, s.existsLocked)
		if res.Kind == resolver.External {
			continue
		}
		out[spec] = res.Path
	}
	return out
}

func (s *Store) recomputeLocked(importer string) {
	f, ok := s.files[importer]
	if !ok {
		delete(s.graph, importer)
		return
	}
	if !IsScript(importer) {
		delete(s.graph, importer)
		return
	}
	var edges []string
	seen := make(map[string]struct{})
	for _, spec := range jsimport.Specifiers(f.Content) {
		res := resolver.Resolve(importer, spec, s.existsLocked)
		if res.Kind != resolver.Resolved {
			continue
		}
		if _, dup := seen[res.Path]; dup {
			continue
		}
		seen[res.Path] = struct{}{}
		edges = append(edges, res.Path)
	}
	if len(edges) == 0 {
		delete(s.graph, importer)
		return
	}
	s.graph[importer] = edges
}

// reresolveCandidatesLocked recomputes importers that have a local specifier
// whose probe list contains target, since a new file can change which
// candidate wins.
func (s *Store) reresolveCandidatesLocked(target string) {
	for importer, f := range s.files {
		if importer == target || !IsScript(importer) {
			continue
		}
		for _, spec := range jsimport.Specifiers(f.Content) {
			if !vpath.IsLocal(spec) {
				continue
			}
			base := resolver.Resolve(importer, spec, nil).Path
			if slices.Contains(resolver.Candidates(base), target) {
				s.recomputeLocked(importer)
				break
			}
		}
	}
}

func (s *Store) dependentsLocked(target string) []string {
	var out []string
	for importer, edges := range s.graph {
		if slices.Contains(edges, target) {
			out = append(out, importer)
		}
	}
	sort.Strings(out)
	return out
}
