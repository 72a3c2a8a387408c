package jsimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `import React, { useState } from 'react';
import Button from "./components/Button";
import './style.css';
export { helper } from '../lib/helper';
export * from "./types";
// import Old from './old';
/* import Older from './older'; */
const Lazy = React.lazy(() => import('./Lazy'));
const label = "import x from './not-an-import'";
`

func TestScanFindsAllKinds(t *testing.T) {
	imports := Scan(sample)

	var got []string
	for _, imp := range imports {
		got = append(got, imp.Kind.String()+":"+imp.Specifier)
	}
	assert.Equal(t, []string{
		"static:react",
		"static:./components/Button",
		"side-effect:./style.css",
		"static:../lib/helper",
		"static:./types",
		"dynamic:./Lazy",
	}, got)
}

func TestScanOffsetsPointAtSpecifier(t *testing.T) {
	for _, imp := range Scan(sample) {
		assert.Equal(t, imp.Specifier, sample[imp.Start:imp.End])
	}
}

func TestScanMultilineImportClause(t *testing.T) {
	src := "import {\n  a,\n  b,\n} from './ab';\n"
	imports := Scan(src)
	require.Len(t, imports, 1)
	assert.Equal(t, "./ab", imports[0].Specifier)
	assert.Equal(t, Static, imports[0].Kind)
}

func TestScanTypeOnlyImport(t *testing.T) {
	imports := Scan("import type { Props } from './types';")
	require.Len(t, imports, 1)
	assert.Equal(t, "./types", imports[0].Specifier)
}

func TestSpecifiersDeduplicates(t *testing.T) {
	src := "import a from './a';\nimport { b } from './a';\nimport('./a');"
	assert.Equal(t, []string{"./a"}, Specifiers(src))
}

func TestRewritePreservesEverythingElse(t *testing.T) {
	src := "import A from './A';\nimport B from 'b';\nconsole.log(A, B);\n"
	out := Rewrite(src, func(imp Import) (string, bool) {
		if strings.HasPrefix(imp.Specifier, ".") {
			return "/src/A.tsx", true
		}
		return "", false
	})
	assert.Equal(t, "import A from '/src/A.tsx';\nimport B from 'b';\nconsole.log(A, B);\n", out)
}

func TestRewriteWithoutImportsReturnsInput(t *testing.T) {
	src := "export default function answer() { return 42 }"
	assert.Equal(t, src, Rewrite(src, func(Import) (string, bool) { return "x", true }))
}
