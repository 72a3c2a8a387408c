// Package preview serves a workspace to a sandboxed preview frame. Every
// request under the preview scope is answered from the document context
// through the bridge and compiled on the fly.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"livepreview/internal/compiler"
	"livepreview/internal/importmap"
	"livepreview/internal/preview/bridge"
	"livepreview/internal/vfs"
	"livepreview/internal/vpath"
)

const DefaultScope = "/preview/"

const (
	contentTypeJS   = "application/javascript; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// FileFetcher is the interceptor's view of the bridge client.
type FileFetcher interface {
	RequestFile(ctx context.Context, path string) (bridge.File, error)
	RequestEntry(ctx context.Context) (string, error)
}

type Interceptor struct {
	scope    string
	files    FileFetcher
	compiler *compiler.Compiler
	maps     *importmap.Builder
	log      *logrus.Entry
}

// NewInterceptor serves scope. comp must rewrite imports under the same
// scope so that module requests come back here.
func NewInterceptor(scope string, files FileFetcher, comp *compiler.Compiler, maps *importmap.Builder) *Interceptor {
	return &Interceptor{
		scope:    NormalizeScope(scope),
		files:    files,
		compiler: comp,
		maps:     maps,
		log:      logrus.WithField("component", "preview"),
	}
}

// NormalizeScope returns scope with exactly one leading and trailing slash.
func NormalizeScope(scope string) string {
	clean := vpath.Normalize(scope)
	if clean == "/" {
		return DefaultScope
	}
	return clean + "/"
}

func (i *Interceptor) Scope() string { return i.scope }

func (i *Interceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p := r.URL.Path
	root := strings.TrimSuffix(i.scope, "/")
	switch {
	case p == root || p == i.scope || p == i.scope+"index.html":
		i.serveEntry(w, r)
	case strings.HasPrefix(p, i.scope):
		i.serveAsset(w, r, vpath.Normalize(strings.TrimPrefix(p, i.scope)))
	default:
		http.NotFound(w, r)
	}
}

func (i *Interceptor) serveEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		entry    string
		entryErr error
		manifest []byte
	)
	var g errgroup.Group
	g.Go(func() error {
		entry, entryErr = i.files.RequestEntry(ctx)
		return nil
	})
	g.Go(func() error {
		if f, err := i.files.RequestFile(ctx, importmap.ManifestPath); err == nil && f.Path == importmap.ManifestPath {
			manifest = []byte(f.Content)
		}
		return nil
	})
	_ = g.Wait()

	var boot string
	if entryErr != nil {
		i.log.WithError(entryErr).Warn("preview entry unavailable")
		boot = overlayScript("No entry point found: "+entryErr.Error(), "/")
	} else {
		boot = fmt.Sprintf("import %s;\n", jsString(i.scope+strings.TrimPrefix(entry, "/")))
	}
	doc := entryDocument(i.maps.BuildFromManifest(manifest).JSON(), boot)
	write(w, r, contentTypeHTML, doc)
}

func (i *Interceptor) serveAsset(w http.ResponseWriter, r *http.Request, path string) {
	log := i.log.WithField("path", path)
	f, err := i.files.RequestFile(r.Context(), path)
	if err != nil {
		level := logrus.DebugLevel
		if !errors.Is(err, bridge.ErrNotFound) {
			level = logrus.WarnLevel
		}
		log.WithError(err).Log(level, "module unavailable")
		write(w, r, contentTypeJS, overlayScript("Module not found: "+path, path))
		return
	}

	w.Header().Set("X-Preview-Resolved-Path", f.Path)
	switch {
	case strings.EqualFold(vpath.Ext(f.Path), ".css"):
		write(w, r, contentTypeJS, styleScript(f.Content, f.Path))
	case strings.EqualFold(vpath.Ext(f.Path), ".json"):
		write(w, r, contentTypeJSON, f.Content)
	case vfs.IsScript(f.Path):
		code, err := i.compiler.Compile(f.Path, f.Content, importsFrom(f.Imports))
		if err != nil {
			log.WithError(err).Info("compile failed")
			write(w, r, contentTypeJS, overlayScript(compileMessage(err), f.Path))
			return
		}
		write(w, r, contentTypeJS, code)
	default:
		write(w, r, contentTypeText, f.Content)
	}
}

func importsFrom(resolved map[string]string) compiler.ImportResolver {
	return func(spec string) (string, bool) {
		p, ok := resolved[spec]
		return p, ok
	}
}

func compileMessage(err error) string {
	var ce *compiler.CompileError
	if errors.As(err, &ce) && ce.Line > 0 {
		return fmt.Sprintf("%s (%d:%d)", ce.Message, ce.Line, ce.Column)
	}
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// write always answers 200 so one failing module never aborts the graph.
func write(w http.ResponseWriter, r *http.Request, contentType, body string) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func entryDocument(importMapJSON, boot string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\" />\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	b.WriteString("<style>body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }</style>\n")
	b.WriteString("<script type=\"importmap\">")
	b.WriteString(importMapJSON)
	b.WriteString("</script>\n<script>")
	b.WriteString(consoleBridgeScript)
	b.WriteString("</script>\n</head>\n<body>\n<div id=\"root\"></div>\n<script type=\"module\">\n")
	b.WriteString(boot)
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}
