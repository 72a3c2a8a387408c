package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, prefix string) *Compiler {
	t.Helper()
	opts := DefaultOptions()
	opts.Prefix = prefix
	opts.InlineSourceMap = false
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestCompileStripsTypes(t *testing.T) {
	c := newCompiler(t, "")
	out, err := c.Compile("/src/answer.ts", "const x: number = 42;\nexport default x;\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "42")
	assert.NotContains(t, out, ": number")
}

func TestCompileKeepsLiteralReturn(t *testing.T) {
	c := newCompiler(t, "")
	out, err := c.Compile("/src/f.ts", "export function f(): number { return 42 }\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "function f()")
	assert.Contains(t, out, "return 42")
}

func TestCompileLowersJSXToFactory(t *testing.T) {
	c := newCompiler(t, "")
	out, err := c.Compile("/src/App.tsx", "import React from 'react';\nexport default () => <div className=\"x\"><></></div>;\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, `React.createElement("div"`)
	assert.Contains(t, out, "React.Fragment")
	assert.Contains(t, out, `from "react"`, "bare specifiers are left for the import map")
}

func TestCompileRewritesRelativeImports(t *testing.T) {
	c := newCompiler(t, "/preview/")
	resolved := map[string]string{"./App": "/src/App.tsx", "./style.css": "/src/style.css"}
	src := "import App from './App';\nimport './style.css';\nconsole.log(App);\n"

	out, err := c.Compile("/src/main.tsx", src, func(spec string) (string, bool) {
		p, ok := resolved[spec]
		return p, ok
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"/preview/src/App.tsx"`)
	assert.Contains(t, out, `"/preview/src/style.css"`)
	assert.NotContains(t, out, "./App")
}

func TestRewriteImportsFallsBackToJoinedPath(t *testing.T) {
	c := newCompiler(t, "")
	src := "import u from '../lib/util';\nconst m = import('./lazy');\nimport x from 'left-pad';\n"
	got := c.RewriteImports("/src/a/b.ts", src, nil)
	assert.Equal(t, "import u from '/src/lib/util';\nconst m = import('/src/a/lazy');\nimport x from 'left-pad';\n", got)
}

func TestRewriteImportsIsIdempotent(t *testing.T) {
	src := "import A from './A';\nimport B from '../B';\nimport C from '/src/C';\nimport r from 'react';\n"
	for _, prefix := range []string{"", "/preview/"} {
		c := newCompiler(t, prefix)
		once := c.RewriteImports("/src/x/main.ts", src, nil)
		twice := c.RewriteImports("/src/x/main.ts", once, nil)
		assert.Equal(t, once, twice, "prefix %q", prefix)
	}
}

func TestRewriteImportsPrefixesAbsoluteWorkspaceImports(t *testing.T) {
	c := newCompiler(t, "/preview/")
	resolved := map[string]string{"/src/App": "/src/App.tsx"}
	src := "import App from '/src/App';\nimport M from '/src/Missing';\nimport P from '/preview/src/P.tsx';\nimport cdn from '//cdn.example/x.js';\n"
	got := c.RewriteImports("/src/main.tsx", src, func(spec string) (string, bool) {
		p, ok := resolved[spec]
		return p, ok
	})
	assert.Equal(t, "import App from '/preview/src/App.tsx';\nimport M from '/preview/src/Missing';\nimport P from '/preview/src/P.tsx';\nimport cdn from '//cdn.example/x.js';\n", got)

	plain := newCompiler(t, "")
	assert.Equal(t, src, plain.RewriteImports("/src/main.tsx", src, nil), "without a prefix absolute imports are kept")
}

func TestCompileErrorCarriesLocation(t *testing.T) {
	c := newCompiler(t, "")
	_, err := c.Compile("/src/broken.tsx", "export default () => {\n  const = ;\n}\n", nil)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/src/broken.tsx", ce.Path)
	assert.Equal(t, 2, ce.Line)
	assert.NotEmpty(t, ce.Message)
	assert.Contains(t, ce.Error(), "/src/broken.tsx:2:")
}

func TestCompileInlinesSourceMap(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)
	out, err := c.Compile("/x.ts", "export const n: number = 1;", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "//# sourceMappingURL=data:application/json;base64,")
}

func TestCompileMemoizesByRewrittenContent(t *testing.T) {
	c := newCompiler(t, "")
	src := "export const a = 1;"
	_, err := c.Compile("/a.ts", src, nil)
	require.NoError(t, err)
	_, err = c.Compile("/a.ts", src, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cached())

	_, err = c.Compile("/a.ts", "export const a = 2;", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cached())
}

func TestCompileWithoutCache(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	out, err := c.Compile("/x.jsx", "export default <p/>;", nil)
	require.NoError(t, err)
	assert.Contains(t, out, `React.createElement("p"`)
	assert.NotContains(t, out, "sourceMappingURL")
	assert.Zero(t, c.Cached())
}
