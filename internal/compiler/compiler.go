// Package compiler turns one workspace file into a browser-loadable ES module:
// relative import specifiers are rewritten to canonical absolute paths and
// TypeScript/JSX syntax is lowered with esbuild.
package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"livepreview/internal/jsimport"
	"livepreview/internal/vpath"
)

type Options struct {
	// Prefix is prepended to rewritten absolute paths so the browser keeps
	// requesting them under the preview scope, e.g. "/preview".
	Prefix      string
	JSXFactory  string
	JSXFragment string
	Target      esbuild.Target
	// InlineSourceMap appends a source map so stack traces point at source lines.
	InlineSourceMap bool
	// CacheSize bounds memoized outputs; zero disables memoization.
	CacheSize int
}

func DefaultOptions() Options {
	return Options{
		JSXFactory:      "React.createElement",
		JSXFragment:     "React.Fragment",
		Target:          esbuild.ES2020,
		InlineSourceMap: true,
		CacheSize:       512,
	}
}

// ImportResolver returns the canonical workspace path for a relative
// specifier of the file being compiled.
type ImportResolver func(specifier string) (string, bool)

// CompileError is returned when lowering fails. Line is 1-based, Column 0-based.
type CompileError struct {
	Path    string
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

type Compiler struct {
	opts  Options
	cache *lru.Cache[string, string]
	log   *logrus.Entry
}

func New(opts Options) (*Compiler, error) {
	def := DefaultOptions()
	if opts.JSXFactory == "" {
		opts.JSXFactory = def.JSXFactory
	}
	if opts.JSXFragment == "" {
		opts.JSXFragment = def.JSXFragment
	}
	if opts.Target == 0 {
		opts.Target = def.Target
	}
	opts.Prefix = strings.TrimSuffix(strings.TrimSpace(opts.Prefix), "/")

	c := &Compiler{opts: opts, log: logrus.WithField("component", "compiler")}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("init compile cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Compile rewrites the imports of source, then lowers it. It is pure with
// respect to its inputs; outputs are memoized by path and rewritten content.
func (c *Compiler) Compile(path, source string, resolve ImportResolver) (string, error) {
	path = vpath.Normalize(path)
	rewritten := c.RewriteImports(path, source, resolve)

	key := cacheKey(path, rewritten)
	if c.cache != nil {
		if code, ok := c.cache.Get(key); ok {
			return code, nil
		}
	}

	code, err := c.lower(path, rewritten)
	if err != nil {
		c.log.WithField("path", path).WithError(err).Debug("compile failed")
		return "", err
	}
	if c.cache != nil {
		c.cache.Add(key, code)
	}
	return code, nil
}

// RewriteImports replaces every relative specifier with its canonical absolute
// path under the configured prefix. Absolute workspace specifiers get the
// prefix too unless they already carry it. Bare specifiers are kept.
func (c *Compiler) RewriteImports(path, source string, resolve ImportResolver) string {
	dir := vpath.Dirname(path)
	return jsimport.Rewrite(source, func(imp jsimport.Import) (string, bool) {
		spec := imp.Specifier
		switch {
		case vpath.IsRelative(spec):
		case strings.HasPrefix(spec, "/") && !strings.HasPrefix(spec, "//") && !c.underPrefix(spec):
		default:
			return "", false
		}
		target, ok := "", false
		if resolve != nil {
			target, ok = resolve(spec)
		}
		if !ok || target == "" {
			target = vpath.Join(dir, spec)
			if strings.HasPrefix(spec, "/") {
				target = spec
			}
		}
		return c.opts.Prefix + vpath.Normalize(target), true
	})
}

// underPrefix reports whether spec already points inside the prefix. With
// no prefix every absolute path does.
func (c *Compiler) underPrefix(spec string) bool {
	p := c.opts.Prefix
	return p == "" || spec == p || strings.HasPrefix(spec, p+"/")
}

func (c *Compiler) lower(path, source string) (string, error) {
	opts := esbuild.TransformOptions{
		Loader:      loaderFor(path),
		Format:      esbuild.FormatESModule,
		Target:      c.opts.Target,
		Sourcefile:  path,
		JSX:         esbuild.JSXTransform,
		JSXFactory:  c.opts.JSXFactory,
		JSXFragment: c.opts.JSXFragment,
	}
	if c.opts.InlineSourceMap {
		opts.Sourcemap = esbuild.SourceMapInline
		opts.SourcesContent = esbuild.SourcesContentInclude
	}
	result := esbuild.Transform(source, opts)
	if len(result.Errors) > 0 {
		return "", toCompileError(path, result.Errors[0])
	}
	return string(result.Code), nil
}

// Cached reports how many outputs are memoized.
func (c *Compiler) Cached() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

func loaderFor(path string) esbuild.Loader {
	switch strings.ToLower(vpath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return esbuild.LoaderTS
	case ".tsx":
		return esbuild.LoaderTSX
	case ".jsx", ".js":
		return esbuild.LoaderJSX
	}
	return esbuild.LoaderJS
}

func toCompileError(path string, msg esbuild.Message) *CompileError {
	ce := &CompileError{Path: path, Message: msg.Text}
	if msg.Location != nil {
		ce.Line = msg.Location.Line
		ce.Column = msg.Location.Column
	}
	return ce
}

func cacheKey(path, source string) string {
	sum := sha256.Sum256([]byte(source))
	return path + "|" + hex.EncodeToString(sum[:])
}
