package importmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestMergesDevOverDeps(t *testing.T) {
	m := ParseManifest([]byte(`{
		"name": "demo",
		"dependencies": {"lodash": "^4.17.21", "zod": "3.22.0", "bad": 7},
		"devDependencies": {"zod": "~3.23.1"}
	}`))
	assert.Equal(t, "demo", m.Name)
	assert.Equal(t, map[string]string{"lodash": "^4.17.21", "zod": "~3.23.1"}, m.Merged())
	assert.Equal(t, []string{"lodash", "zod"}, m.Packages())
}

func TestParseManifestNeverFails(t *testing.T) {
	for _, raw := range []string{"", "{", "[]", "null", `{"dependencies": "nope"}`} {
		m := ParseManifest([]byte(raw))
		assert.Empty(t, m.Merged(), raw)
	}
}

func TestBuildPinsReact(t *testing.T) {
	b := NewBuilder(Options{ReactVersion: "18.3.1"})
	m := b.Build(ParseManifest([]byte(`{"dependencies": {"react": "^17.0.0", "react-dom": "17.0.2"}}`)))

	assert.Equal(t, "https://esm.sh/react@18.3.1", m.Imports["react"])
	assert.Equal(t, "https://esm.sh/react@18.3.1/", m.Imports["react/"])
	assert.Equal(t, "https://esm.sh/react-dom@18.3.1", m.Imports["react-dom"])
	assert.Equal(t, "https://esm.sh/react-dom@18.3.1/", m.Imports["react-dom/"])
	assert.Len(t, m.Imports, 4)
}

func TestBuildWithoutManifestHasOnlyPinnedEntries(t *testing.T) {
	b := NewBuilder(Options{})
	m := b.BuildFromManifest(nil)
	assert.Equal(t, "https://esm.sh/react@"+DefaultReactVersion, m.Imports["react"])
	assert.Len(t, m.Imports, 4)

	m = b.BuildFromManifest([]byte("not json"))
	assert.Len(t, m.Imports, 4)
}

func TestBuildMapsDeclaredPackages(t *testing.T) {
	b := NewBuilder(Options{CDN: "https://cdn.example/"})
	m := b.Build(ParseManifest([]byte(`{
		"dependencies": {
			"lodash": "^4.17.21",
			"@tanstack/react-query": "~5.0.0",
			"dayjs": "*",
			"next-thing": "canary",
			"local": "file:../local",
			"ws": "workspace:*",
			"forked": "git+https://github.com/x/forked.git",
			"ranged": "1.x"
		}
	}`)))

	assert.Equal(t, "https://cdn.example/lodash@4.17.21?external=react,react-dom", m.Imports["lodash"])
	assert.Equal(t, "https://cdn.example/*lodash@4.17.21/", m.Imports["lodash/"])
	assert.Equal(t, "https://cdn.example/*@tanstack/react-query@5.0.0/", m.Imports["@tanstack/react-query/"])
	assert.Equal(t, "https://cdn.example/*dayjs/", m.Imports["dayjs/"])

	deep, ok := m.Resolve("@tanstack/react-query/build/modern")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/*@tanstack/react-query@5.0.0/build/modern", deep, "deep imports keep react external")
	assert.Equal(t, "https://cdn.example/@tanstack/react-query@5.0.0?external=react,react-dom", m.Imports["@tanstack/react-query"])
	assert.Equal(t, "https://cdn.example/dayjs?external=react,react-dom", m.Imports["dayjs"])
	assert.Equal(t, "https://cdn.example/next-thing@canary?external=react,react-dom", m.Imports["next-thing"])
	assert.Equal(t, "https://cdn.example/ranged@1.x?external=react,react-dom", m.Imports["ranged"])
	for _, skipped := range []string{"local", "ws", "forked"} {
		_, ok := m.Imports[skipped]
		assert.False(t, ok, skipped)
	}
}

func TestInvalidReactVersionFallsBack(t *testing.T) {
	b := NewBuilder(Options{ReactVersion: "nineteen"})
	assert.Equal(t, DefaultReactVersion, b.ReactVersion())
}

func TestBuildFromManifestIsCached(t *testing.T) {
	b := NewBuilder(Options{})
	raw := []byte(`{"dependencies": {"lodash": "4.17.21"}}`)
	first := b.BuildFromManifest(raw)
	second := b.BuildFromManifest(raw)
	assert.Equal(t, first, second)
	st := b.cache.Stats()
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 1, st.Misses)
}

func TestResolve(t *testing.T) {
	m := ImportMap{Imports: map[string]string{
		"react":       "https://esm.sh/react@19.2.0",
		"react/":      "https://esm.sh/react@19.2.0/",
		"lodash":      "https://esm.sh/lodash@4.17.21?external=react,react-dom",
		"@acme/ui":    "https://esm.sh/@acme/ui@1.0.0",
		"@acme/ui/x/": "https://other.example/x/",
	}}

	cases := []struct {
		spec string
		want string
		ok   bool
	}{
		{"react", "https://esm.sh/react@19.2.0", true},
		{"react/jsx-runtime", "https://esm.sh/react@19.2.0/jsx-runtime", true},
		{"lodash/debounce", "https://esm.sh/lodash@4.17.21/debounce?external=react,react-dom", true},
		{"@acme/ui/button", "https://esm.sh/@acme/ui@1.0.0/button", true},
		{"@acme/ui/x/y", "https://other.example/x/y", true},
		{"vue", "vue", false},
		{"vue/runtime", "vue/runtime", false},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			got, ok := m.Resolve(tc.spec)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONEscapesScriptClose(t *testing.T) {
	m := ImportMap{Imports: map[string]string{"x": "</script><b>"}}
	out := m.JSON()
	require.NotContains(t, out, "</script>")
	assert.True(t, strings.HasPrefix(out, `{"imports":`))
}
