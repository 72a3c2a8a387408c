// Package jsimport locates module specifiers in JavaScript and TypeScript
// source by byte offset so they can be resolved or rewritten in place.
package jsimport

import (
	"regexp"
	"sort"
	"strings"
)

type Kind uint8

const (
	// Static is `import x from '...'` or `export ... from '...'`.
	Static Kind = iota
	// SideEffect is a bare `import '...'`.
	SideEffect
	// Dynamic is `import('...')` with a string literal argument.
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case SideEffect:
		return "side-effect"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// Import is one specifier occurrence. Start and End delimit the specifier text
// without its quotes.
type Import struct {
	Specifier string
	Start     int
	End       int
	Kind      Kind
}

var (
	staticRe     = regexp.MustCompile("\\b(?:import|export)\\b[^'\"`;]*?\\bfrom\\s*['\"]([^'\"\\n]+)['\"]")
	sideEffectRe = regexp.MustCompile(`\bimport\s*['"]([^'"\n]+)['"]`)
	dynamicRe    = regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"\n]+)['"]\s*\)`)
)

// Scan returns every import specifier in src ordered by position. Specifiers
// inside comments are ignored.
func Scan(src string) []Import {
	masked, inLiteral := maskComments(src)
	seen := make(map[int]struct{})
	var out []Import
	collect := func(re *regexp.Regexp, kind Kind) {
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			start, end := m[2], m[3]
			if inLiteral[m[0]] {
				continue
			}
			if _, dup := seen[start]; dup {
				continue
			}
			seen[start] = struct{}{}
			out = append(out, Import{
				Specifier: src[start:end],
				Start:     start,
				End:       end,
				Kind:      kind,
			})
		}
	}
	collect(dynamicRe, Dynamic)
	collect(staticRe, Static)
	collect(sideEffectRe, SideEffect)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Specifiers returns the distinct specifiers of src in first-seen order.
func Specifiers(src string) []string {
	imports := Scan(src)
	seen := make(map[string]struct{}, len(imports))
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		if _, ok := seen[imp.Specifier]; ok {
			continue
		}
		seen[imp.Specifier] = struct{}{}
		out = append(out, imp.Specifier)
	}
	return out
}

// Rewrite replaces each specifier for which fn returns ok with the returned
// text. Everything else in src is preserved byte for byte.
func Rewrite(src string, fn func(Import) (string, bool)) string {
	imports := Scan(src)
	if len(imports) == 0 {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, imp := range imports {
		repl, ok := fn(imp)
		if !ok || repl == imp.Specifier {
			continue
		}
		b.WriteString(src[last:imp.Start])
		b.WriteString(repl)
		last = imp.End
	}
	b.WriteString(src[last:])
	return b.String()
}

// maskComments blanks out line and block comments while keeping byte offsets
// and newlines intact. String and template literals are left untouched; the
// returned slice marks which bytes lie inside one.
func maskComments(src string) (string, []bool) {
	buf := []byte(src)
	inLiteral := make([]bool, len(buf)+1)
	var quote byte
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if quote != 0 {
			inLiteral[i] = true
			switch {
			case c == '\\':
				i++
				inLiteral[i] = true
			case c == quote:
				quote = 0
			case c == '\n' && quote != '`':
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '/' && i+1 < len(buf) && buf[i+1] == '/':
			for i < len(buf) && buf[i] != '\n' {
				buf[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(buf) && buf[i+1] == '*':
			buf[i], buf[i+1] = ' ', ' '
			i += 2
			for i < len(buf) && !(buf[i] == '*' && i+1 < len(buf) && buf[i+1] == '/') {
				if buf[i] != '\n' {
					buf[i] = ' '
				}
				i++
			}
			if i < len(buf) {
				buf[i], buf[i+1] = ' ', ' '
				i++
			}
		}
	}
	return string(buf), inLiteral
}
