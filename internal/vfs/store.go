// Package vfs holds the authoritative in-memory workspace: a path-keyed file
// map, the local import graph derived from it, and the entry point.
package vfs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"livepreview/internal/resolver"
	"livepreview/internal/vpath"
)

// LooseExtensions is the probe order used when a preview request omits the
// file extension.
var LooseExtensions = []string{".tsx", ".ts", ".jsx", ".js", ".json", ".css"}

type ChangeKind string

const (
	ChangeReset   ChangeKind = "reset"
	ChangeUpsert  ChangeKind = "upsert"
	ChangeRemove  ChangeKind = "remove"
	ChangeRename  ChangeKind = "rename"
	ChangeEntry   ChangeKind = "entry"
	ChangeContext ChangeKind = "context"
)

// ChangeEvent is delivered to subscribers after a mutation has been applied.
type ChangeEvent struct {
	Kind    ChangeKind
	Path    string
	OldPath string
}

// Store is safe for concurrent use. Lookups never fail: a miss is reported
// through the boolean result.
type Store struct {
	mu         sync.RWMutex
	files      map[string]VirtualFile
	graph      map[string][]string
	entryPoint string

	subMu   sync.Mutex
	subs    map[int]func(ChangeEvent)
	nextSub int

	now func() time.Time
	log *logrus.Entry
}

func NewStore() *Store {
	return &Store{
		files: make(map[string]VirtualFile),
		graph: make(map[string][]string),
		subs:  make(map[int]func(ChangeEvent)),
		now:   time.Now,
		log:   logrus.WithField("component", "vfs"),
	}
}

// SetAll replaces the whole workspace and rebuilds the dependency graph.
// Later duplicates of the same normalized path win.
func (s *Store) SetAll(files []VirtualFile) {
	s.mu.Lock()
	s.files = make(map[string]VirtualFile, len(files))
	for _, f := range files {
		f = s.prepare(f)
		s.files[f.Path] = f
	}
	s.graph = make(map[string][]string, len(s.files))
	for p := range s.files {
		s.recomputeLocked(p)
	}
	if s.entryPoint != "" {
		if _, ok := s.files[s.entryPoint]; !ok {
			s.entryPoint = ""
		}
	}
	count := len(s.files)
	s.mu.Unlock()

	s.log.WithField("files", count).Debug("workspace replaced")
	s.notify(ChangeEvent{Kind: ChangeReset})
}

// Upsert creates or replaces the file at path and recomputes its outgoing
// edges. When the path is new, importers whose specifiers may now resolve to
// it are re-resolved as well.
func (s *Store) Upsert(path, content string) VirtualFile {
	clean := vpath.Normalize(path)

	s.mu.Lock()
	prev, existed := s.files[clean]
	f := prev
	if !existed {
		f = VirtualFile{Path: clean, InContext: true}
	}
	f.Content = content
	f = s.prepare(f)
	f.LastModified = s.now().UnixMilli()
	s.files[clean] = f
	s.recomputeLocked(clean)
	if !existed {
		s.reresolveCandidatesLocked(clean)
	}
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeUpsert, Path: clean})
	return f
}

// Remove deletes the file, its outgoing edges and, if it was the entry point,
// the entry point. Importers that pointed at it are re-resolved.
func (s *Store) Remove(path string) bool {
	clean := vpath.Normalize(path)

	s.mu.Lock()
	if _, ok := s.files[clean]; !ok {
		s.mu.Unlock()
		return false
	}
	s.removeLocked(clean)
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeRemove, Path: clean})
	return true
}

// Rename moves a file to a new path keeping its id. It fails when the source
// is missing or the target already exists.
func (s *Store) Rename(from, to string) (VirtualFile, bool) {
	src, dst := vpath.Normalize(from), vpath.Normalize(to)

	s.mu.Lock()
	f, ok := s.files[src]
	if _, taken := s.files[dst]; !ok || (taken && dst != src) {
		s.mu.Unlock()
		return VirtualFile{}, false
	}
	if src == dst {
		s.mu.Unlock()
		return f, true
	}
	wasEntry := s.entryPoint == src
	s.removeLocked(src)
	f.Path = dst
	f.Name = vpath.Base(dst)
	if f.Language == "" || f.Language == LanguageFor(src) {
		f.Language = LanguageFor(dst)
	}
	f.LastModified = s.now().UnixMilli()
	s.files[dst] = f
	s.recomputeLocked(dst)
	s.reresolveCandidatesLocked(dst)
	if wasEntry {
		s.entryPoint = dst
	}
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeRename, Path: dst, OldPath: src})
	return f, true
}

// ToggleContext flips the InContext flag of a file.
func (s *Store) ToggleContext(path string) (VirtualFile, bool) {
	clean := vpath.Normalize(path)
	s.mu.Lock()
	f, ok := s.files[clean]
	if ok {
		f.InContext = !f.InContext
		s.files[clean] = f
	}
	s.mu.Unlock()
	if ok {
		s.notify(ChangeEvent{Kind: ChangeContext, Path: clean})
	}
	return f, ok
}

// Get is an exact lookup after normalization.
func (s *Store) Get(path string) (VirtualFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[vpath.Normalize(path)]
	return f, ok
}

// FindLoose tries the exact path, the path with each of LooseExtensions, then
// the path as a directory holding index.<ext>. The first hit wins.
func (s *Store) FindLoose(path string) (VirtualFile, bool) {
	clean := vpath.Normalize(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.files[clean]; ok {
		return f, true
	}
	for _, ext := range LooseExtensions {
		if f, ok := s.files[clean+ext]; ok {
			return f, true
		}
	}
	for _, ext := range LooseExtensions {
		if f, ok := s.files[vpath.Join(clean, "index"+ext)]; ok {
			return f, true
		}
	}
	return VirtualFile{}, false
}

// Exists reports whether the normalized path is present.
func (s *Store) Exists(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// List returns all files ordered by path.
func (s *Store) List() []VirtualFile {
	s.mu.RLock()
	out := make([]VirtualFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Resolve resolves specifier as imported from importer against the current files.
func (s *Store) Resolve(importer, specifier string) resolver.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolver.Resolve(vpath.Normalize(importer), specifier, s.existsLocked)
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs on the mutating goroutine after the lock is released.
func (s *Store) Subscribe(fn func(ChangeEvent)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev ChangeEvent) {
	s.subMu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) prepare(f VirtualFile) VirtualFile {
	f.Path = vpath.Normalize(f.Path)
	f.Name = vpath.Base(f.Path)
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Language == "" {
		f.Language = LanguageFor(f.Path)
	}
	if f.LastModified == 0 {
		f.LastModified = s.now().UnixMilli()
	}
	return f
}

func (s *Store) removeLocked(clean string) {
	dependents := s.dependentsLocked(clean)
	delete(s.files, clean)
	delete(s.graph, clean)
	if s.entryPoint == clean {
		s.entryPoint = ""
	}
	for _, importer := range dependents {
		s.recomputeLocked(importer)
	}
}

func (s *Store) existsLocked(p string) bool {
	_, ok := s.files[p]
	return ok
}
