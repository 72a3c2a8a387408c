package vpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "/src/App.tsx", expected: "/src/App.tsx"},
		{name: "relative gets leading slash", input: "src/App.tsx", expected: "/src/App.tsx"},
		{name: "parent segment collapses", input: "/src/components/../App.tsx", expected: "/src/App.tsx"},
		{name: "dot segments dropped", input: "./src/./App.tsx", expected: "/src/App.tsx"},
		{name: "duplicate slashes", input: "//src///App.tsx", expected: "/src/App.tsx"},
		{name: "backslashes", input: `src\components\Button.tsx`, expected: "/src/components/Button.tsx"},
		{name: "pop past root is clamped", input: "/../../etc/../x", expected: "/x"},
		{name: "whitespace trimmed", input: "  /a/b  ", expected: "/a/b"},
		{name: "empty is root", input: "", expected: "/"},
		{name: "only dots", input: "../..", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"", "/", ".", "..", "a/../../b", `..\..\x\.\y`, "/a//b/./c/..", "a/b/c/../../../..", " ./x/ ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.True(t, strings.HasPrefix(once, "/"), "input %q", in)
		for _, seg := range strings.Split(once, "/")[1:] {
			if once == "/" {
				break
			}
			assert.NotContains(t, []string{"", ".", ".."}, seg, "input %q", in)
		}
	}
}

func TestJoinAndDirname(t *testing.T) {
	assert.Equal(t, "/src/Button", Join("/src", "./Button"))
	assert.Equal(t, "/lib/util", Join("/src/app", "../../lib/util"))
	assert.Equal(t, "/src", Dirname("/src/App.tsx"))
	assert.Equal(t, "/", Dirname("/App.tsx"))
	assert.Equal(t, "/", Dirname("/"))
	assert.Equal(t, "App.tsx", Base("/src/App.tsx"))
	assert.Equal(t, ".tsx", Ext("/src/App.tsx"))
	assert.Equal(t, "", Ext("/src/.env"))
	assert.Equal(t, "", Ext("/src/Makefile"))
}

func TestSpecifierKinds(t *testing.T) {
	assert.True(t, IsLocal("./a"))
	assert.True(t, IsLocal("/a"))
	assert.True(t, IsRelative("../a"))
	assert.False(t, IsRelative("/a"))
	assert.False(t, IsLocal("react"))
	assert.False(t, IsLocal("@scope/pkg"))
}
